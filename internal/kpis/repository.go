package kpis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"gorm.io/gorm"
)

// Repository is the persistence surface of the KPI service
type Repository interface {
	List(ctx context.Context, projectID *uint) ([]models.KPI, error)
	Get(ctx context.Context, id uint) (*models.KPI, error)
	Create(ctx context.Context, kpi *models.KPI) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a Repository backed by the kpis table
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// List returns KPIs newest first, optionally only those of one project
func (r *gormRepository) List(ctx context.Context, projectID *uint) ([]models.KPI, error) {
	kpis := []models.KPI{}
	q := r.db.WithContext(ctx).Order("id_kpi DESC")
	if projectID != nil {
		q = q.Where("id_proyecto = ?", *projectID)
	}
	if err := q.Find(&kpis).Error; err != nil {
		return nil, fmt.Errorf("failed to list kpis: %w", err)
	}
	return kpis, nil
}

func (r *gormRepository) Get(ctx context.Context, id uint) (*models.KPI, error) {
	var kpi models.KPI
	err := r.db.WithContext(ctx).First(&kpi, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("KPI no existe")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kpi: %w", err)
	}
	return &kpi, nil
}

func (r *gormRepository) Create(ctx context.Context, kpi *models.KPI) error {
	if err := r.db.WithContext(ctx).Create(kpi).Error; err != nil {
		return fmt.Errorf("failed to create kpi: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&models.KPI{}).
		Where("id_kpi = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update kpi: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.KPI{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete kpi: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("KPI no existe")
	}
	return nil
}
