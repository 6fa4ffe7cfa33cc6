// Package projects implements the project CRUD endpoints.
package projects

import (
	"context"
	"strings"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
)

// Input is the body of POST /proyectos and PUT /proyectos/:id
type Input struct {
	Name        string       `json:"nombre" binding:"required,max=150"`
	Description *string      `json:"descripcion"`
	StartDate   *models.Date `json:"fecha_inicio"`
	EndDate     *models.Date `json:"fecha_fin"`
	PMID        *uint        `json:"id_pm"`
}

// UserChecker reports whether a user id refers to an active account
type UserChecker interface {
	IsActive(ctx context.Context, id uint) (bool, error)
}

// Service holds the project use cases
type Service struct {
	repo  Repository
	users UserChecker
}

// NewService creates a Service checking PMs through users
func NewService(repo Repository, users UserChecker) *Service {
	return &Service{repo: repo, users: users}
}

// List returns every project ordered by id
func (s *Service) List(ctx context.Context) ([]models.Project, error) {
	return s.repo.List(ctx)
}

// Get loads one project
func (s *Service) Get(ctx context.Context, id uint) (*models.Project, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts the project and returns the stored row
func (s *Service) Create(ctx context.Context, in Input) (*models.Project, error) {
	p, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.ID)
}

// Update replaces every field of an existing project
func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Project, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a project without tasks
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(ctx context.Context, in Input) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("nombre", "Este campo no puede estar en blanco.")
	}
	if in.PMID != nil {
		active, err := s.users.IsActive(ctx, *in.PMID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, apperr.Validation("id_pm", "El PM seleccionado no existe o no está activo.")
		}
	}
	return &models.Project{
		Name:        name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		PMID:        in.PMID,
	}, nil
}
