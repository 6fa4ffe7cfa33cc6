package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"gorm.io/gorm"
)

// Repository is the persistence surface of the project service
type Repository interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id uint) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a Repository backed by the proyectos table
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) List(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	if err := r.db.WithContext(ctx).Order("id_proyecto").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (r *gormRepository) Get(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Proyecto no existe")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

func (r *gormRepository) Create(ctx context.Context, p *models.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Update writes every column, so cleared optional fields become NULL
func (r *gormRepository) Update(ctx context.Context, p *models.Project) error {
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id_proyecto = ?", p.ID).
		Updates(map[string]interface{}{
			"nombre":       p.Name,
			"descripcion":  p.Description,
			"fecha_inicio": p.StartDate,
			"fecha_fin":    p.EndDate,
			"id_pm":        p.PMID,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return apperr.Conflict("El proyecto tiene tareas asociadas")
	}
	if res.Error != nil {
		return fmt.Errorf("failed to delete project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Proyecto no existe")
	}
	return nil
}
