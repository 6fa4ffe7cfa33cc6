// Package tasks implements task CRUD, assignment, progress tracking and time logging.
package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"github.com/jimdaga/gestor/internal/notifications"
)

const taskLink = "/dashboard/tarea"

// Input is the body of POST /tareas and PUT /tareas/:id
type Input struct {
	ProjectID   uint         `json:"id_proyecto" binding:"required"`
	Title       string       `json:"titulo" binding:"required,max=150"`
	Description *string      `json:"descripcion"`
	DueDate     *models.Date `json:"fecha_vencimiento"`
	AssigneeID  *uint        `json:"id_usuario_asignado"`
	Priority    *string      `json:"prioridad" binding:"omitempty,oneof=Alta Media Baja"`
}

// AssignInput is the body of POST /tareas/:id/assign. A null id unassigns.
type AssignInput struct {
	AssigneeID *uint `json:"id_usuario_asignado"`
}

// DueDateInput is the body of POST /tareas/:id/duedate. A null date clears it.
type DueDateInput struct {
	DueDate *models.Date `json:"fecha_vencimiento"`
}

// ProgressInput is the body of POST /tareas/:id/progress
type ProgressInput struct {
	Progress *float64 `json:"progreso" binding:"required"`
	Status   *string  `json:"estado"`
}

// TimeInput is the body of POST /tareas/:id/tiempo. The task id in the
// body is accepted for compatibility; the path id wins.
type TimeInput struct {
	TaskID *uint    `json:"id_tarea"`
	UserID uint     `json:"id_usuario" binding:"required"`
	Hours  *float64 `json:"horas" binding:"required,gt=0,lt=1000"`
	Note   *string  `json:"nota"`
}

// UserChecker reports whether a user id refers to an active account
type UserChecker interface {
	IsActive(ctx context.Context, id uint) (bool, error)
}

// ProjectGetter loads a project by id
type ProjectGetter interface {
	Get(ctx context.Context, id uint) (*models.Project, error)
}

// Service holds the task use cases
type Service struct {
	repo     Repository
	users    UserChecker
	projects ProjectGetter
	notifier notifications.Dispatcher
}

// NewService creates a Service. notifier may be nil.
func NewService(repo Repository, users UserChecker, projects ProjectGetter, notifier notifications.Dispatcher) *Service {
	return &Service{repo: repo, users: users, projects: projects, notifier: notifier}
}

// ListByProject returns every task of a project with its logged hours
func (s *Service) ListByProject(ctx context.Context, projectID uint) ([]models.Task, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Create inserts a pending task and notifies the assignee, if any
func (s *Service) Create(ctx context.Context, in Input) (*models.Task, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    priorityOrDefault(in.Priority),
		Progress:    0,
		Status:      models.TaskStatusPendiente,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	created, err := s.repo.Get(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		s.notifyAssignee(ctx, *in.AssigneeID, "Tarea asignada: "+created.Title, created.Description)
	}
	return created, nil
}

// Update replaces the editable fields. Progress and status are left alone.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Task, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"id_proyecto":         in.ProjectID,
		"titulo":              strings.TrimSpace(in.Title),
		"descripcion":         in.Description,
		"fecha_vencimiento":   in.DueDate,
		"id_usuario_asignado": in.AssigneeID,
		"prioridad":           priorityOrDefault(in.Priority),
	})
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		s.notifyAssignee(ctx, *in.AssigneeID, "Te asignaron una tarea: "+task.Title, task.Description)
	}
	return task, nil
}

// Assign sets or clears the assignee
func (s *Service) Assign(ctx context.Context, id uint, in AssignInput) (*models.Task, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.AssigneeID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"id_usuario_asignado": in.AssigneeID}); err != nil {
		return nil, err
	}

	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		s.notifyAssignee(ctx, *in.AssigneeID, "Te asignaron una tarea: "+task.Title, task.Description)
	}
	return task, nil
}

// SetDueDate sets or clears the due date
func (s *Service) SetDueDate(ctx context.Context, id uint, in DueDateInput) (*models.Task, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"fecha_vencimiento": in.DueDate}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Complete forces the task to Completada at 100%
func (s *Service) Complete(ctx context.Context, id uint) (*models.Task, error) {
	return s.writeProgress(ctx, id, 100, models.TaskStatusCompletada)
}

// SetProgress stores progress and status together. Without an explicit
// status, the status is derived from the progress and the progress clamped.
func (s *Service) SetProgress(ctx context.Context, id uint, in ProgressInput) (*models.Task, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	progress := *in.Progress
	if err := models.CheckNumeric(progress, models.ProgressDigits, models.DecimalPlaces); err != nil {
		return nil, apperr.Validation("progreso", err.Error())
	}
	var status string

	if in.Status == nil {
		progress, status = models.DeriveStatus(progress)
	} else {
		status = *in.Status
		if !models.IsTaskStatus(status) {
			return nil, apperr.Validation("estado", "Valor no permitido, opciones: Pendiente, En progreso, Completada.")
		}
		if progress < 0 || progress > 100 {
			return nil, apperr.Validation("progreso", "Debe estar entre 0 y 100")
		}
	}
	return s.writeProgress(ctx, id, progress, status)
}

func (s *Service) writeProgress(ctx context.Context, id uint, progress float64, status string) (*models.Task, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"progreso": progress,
		"estado":   status,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the task and its time entries
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// LogTime records hours against a task and returns the task's new total
func (s *Service) LogTime(ctx context.Context, id uint, in TimeInput) (float64, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return 0, err
	}
	if in.Hours == nil || *in.Hours <= 0 {
		return 0, apperr.Validation("horas", "Debe ser > 0")
	}
	if err := models.CheckNumeric(*in.Hours, models.HoursDigits, models.DecimalPlaces); err != nil {
		return 0, apperr.Validation("horas", err.Error())
	}
	active, err := s.users.IsActive(ctx, in.UserID)
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, apperr.Validation("id_usuario", "Usuario no válido")
	}

	entry := &models.TimeEntry{
		TaskID: id,
		UserID: in.UserID,
		Hours:  *in.Hours,
	}
	if in.Note != nil && strings.TrimSpace(*in.Note) != "" {
		entry.Note = in.Note
	}
	if err := s.repo.AddTimeEntry(ctx, entry); err != nil {
		return 0, err
	}
	return s.repo.TotalHours(ctx, id)
}

// ListTime returns a task's time entries, newest first
func (s *Service) ListTime(ctx context.Context, id uint, filter TimeFilter) ([]models.TimeEntry, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListTimeEntries(ctx, id, filter)
}

// ParseTimeFilter turns the fecha, desde and hasta query values into a
// filter over whole UTC days. fecha wins over the range. If any value is
// malformed the filter is dropped and the list comes back unfiltered.
func ParseTimeFilter(fecha, desde, hasta string) TimeFilter {
	if fecha != "" {
		day, err := models.ParseDate(fecha)
		if err != nil {
			return TimeFilter{}
		}
		from := day.Time
		to := from.AddDate(0, 0, 1)
		return TimeFilter{From: &from, To: &to}
	}

	var filter TimeFilter
	if desde != "" {
		day, err := models.ParseDate(desde)
		if err != nil {
			return TimeFilter{}
		}
		from := day.Time
		filter.From = &from
	}
	if hasta != "" {
		day, err := models.ParseDate(hasta)
		if err != nil {
			return TimeFilter{}
		}
		to := day.Time.AddDate(0, 0, 1)
		filter.To = &to
	}
	return filter
}

func (s *Service) validate(ctx context.Context, in Input) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("titulo", "Este campo no puede estar en blanco.")
	}
	if _, err := s.projects.Get(ctx, in.ProjectID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("id_proyecto", "Proyecto no existe")
		}
		return err
	}
	return s.checkAssignee(ctx, in.AssigneeID)
}

func (s *Service) checkAssignee(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	active, err := s.users.IsActive(ctx, *id)
	if err != nil {
		return err
	}
	if !active {
		return apperr.Validation("id_usuario_asignado", "Usuario no válido")
	}
	return nil
}

func (s *Service) notifyAssignee(ctx context.Context, userID uint, title string, description *string) {
	if s.notifier == nil {
		return
	}
	body := ""
	if description != nil {
		body = *description
	}
	link := taskLink
	s.notifier.Dispatch(ctx, notifications.Request{
		UserID: userID,
		Type:   models.NotificationTaskAssigned,
		Title:  title,
		Body:   &body,
		Link:   &link,
	})
}

func priorityOrDefault(p *string) string {
	if p == nil || *p == "" {
		return models.PriorityMedia
	}
	return *p
}
