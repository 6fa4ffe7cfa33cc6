package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"gorm.io/gorm"
)

// TimeFilter bounds time entries by fecha_registro, From inclusive and To exclusive
type TimeFilter struct {
	From *time.Time
	To   *time.Time
}

// Repository is the persistence surface of the task service
type Repository interface {
	ListByProject(ctx context.Context, projectID uint) ([]models.Task, error)
	Get(ctx context.Context, id uint) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	AddTimeEntry(ctx context.Context, entry *models.TimeEntry) error
	TotalHours(ctx context.Context, taskID uint) (float64, error)
	ListTimeEntries(ctx context.Context, taskID uint, filter TimeFilter) ([]models.TimeEntry, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a Repository over tareas and tiempo_tareas
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

type hoursRow struct {
	TaskID uint    `gorm:"column:id_tarea"`
	Total  float64 `gorm:"column:total"`
}

func (r *gormRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.WithContext(ctx).Where("id_proyecto = ?", projectID).Order("id_tarea").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	ids := make([]uint, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	var rows []hoursRow
	err := r.db.WithContext(ctx).Model(&models.TimeEntry{}).
		Select("id_tarea, COALESCE(SUM(horas), 0) AS total").
		Where("id_tarea IN ?", ids).
		Group("id_tarea").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum task hours: %w", err)
	}

	totals := make(map[uint]float64, len(rows))
	for _, row := range rows {
		totals[row.TaskID] = row.Total
	}
	for i := range tasks {
		tasks[i].TotalHours = totals[tasks[i].ID]
	}
	return tasks, nil
}

func (r *gormRepository) Get(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Tarea no existe")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	total, err := r.TotalHours(ctx, id)
	if err != nil {
		return nil, err
	}
	task.TotalHours = total
	return &task, nil
}

func (r *gormRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id_tarea = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes the task and its time entries in one transaction
func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_tarea = ?", id).Delete(&models.TimeEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete time entries: %w", err)
		}
		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Tarea no existe")
		}
		return nil
	})
}

// AddTimeEntry inserts the entry. Deployments whose tiempo_tareas lacks the
// nota column still accept the hours: the insert is retried without it.
func (r *gormRepository) AddTimeEntry(ctx context.Context, entry *models.TimeEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if err == nil {
		return nil
	}
	if entry.Note == nil {
		return fmt.Errorf("failed to log time: %w", err)
	}

	entry.ID = 0
	if retryErr := r.db.WithContext(ctx).Omit("nota").Create(entry).Error; retryErr != nil {
		return fmt.Errorf("failed to log time: %w", retryErr)
	}
	entry.Note = nil
	return nil
}

func (r *gormRepository) TotalHours(ctx context.Context, taskID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.TimeEntry{}).
		Select("COALESCE(SUM(horas), 0)").
		Where("id_tarea = ?", taskID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum task hours: %w", err)
	}
	return total, nil
}

func (r *gormRepository) ListTimeEntries(ctx context.Context, taskID uint, filter TimeFilter) ([]models.TimeEntry, error) {
	entries := []models.TimeEntry{}
	q := r.db.WithContext(ctx).Where("id_tarea = ?", taskID)
	if filter.From != nil {
		q = q.Where("fecha_registro >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("fecha_registro < ?", *filter.To)
	}
	if err := q.Order("fecha_registro DESC, id_registro DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, nil
}
