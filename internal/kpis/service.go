// Package kpis implements KPI tracking: CRUD plus a quick current-value update.
package kpis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"github.com/jimdaga/gestor/internal/notifications"
)

const kpiLink = "/dashboard/kpi"

// Input is the body of POST /kpis and PUT /kpis/:id.
// On update an optional field left out of the body keeps the stored value;
// an explicit null clears it.
type Input struct {
	Name         string   `json:"nombre" binding:"required,max=150"`
	Description  *string  `json:"descripcion"`
	TargetValue  *float64 `json:"valor_objetivo"`
	CurrentValue *float64 `json:"valor_actual"`
	Type         string   `json:"tipo" binding:"required,oneof=Financiero Operacional Cliente Marketing"`
	ProjectID    *uint    `json:"id_proyecto"`

	// keys present in the decoded body, nil when built in code
	present map[string]bool
}

// UnmarshalJSON decodes the body and records which keys it carried
func (in *Input) UnmarshalJSON(b []byte) error {
	type plain Input
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	*in = Input(p)
	in.present = make(map[string]bool, len(keys))
	for k := range keys {
		in.present[k] = true
	}
	return nil
}

// supplies reports whether the caller set the field. Without a decoded
// body a nil value means absent.
func (in Input) supplies(field string, isSet bool) bool {
	if in.present == nil {
		return isSet
	}
	return in.present[field]
}

// ProgressInput is the body of POST /kpis/:id/progress. valor_actual may be
// a JSON number or a numeric string.
type ProgressInput struct {
	CurrentValue json.RawMessage `json:"valor_actual"`
}

// Value decodes valor_actual
func (in ProgressInput) Value() (float64, error) {
	raw := strings.TrimSpace(string(in.CurrentValue))
	if raw == "" || raw == "null" {
		return 0, apperr.Validation("valor_actual", "Debe ser numérico")
	}

	var v float64
	if err := json.Unmarshal(in.CurrentValue, &v); err == nil {
		return v, nil
	}
	var s string
	if err := json.Unmarshal(in.CurrentValue, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v, nil
		}
	}
	return 0, apperr.Validation("valor_actual", "Debe ser numérico")
}

// ProjectGetter loads a project by id
type ProjectGetter interface {
	Get(ctx context.Context, id uint) (*models.Project, error)
}

// Service holds the KPI use cases
type Service struct {
	repo     Repository
	projects ProjectGetter
	notifier notifications.Dispatcher
}

// NewService creates a Service. notifier may be nil.
func NewService(repo Repository, projects ProjectGetter, notifier notifications.Dispatcher) *Service {
	return &Service{repo: repo, projects: projects, notifier: notifier}
}

// List returns KPIs newest first, optionally for one project
func (s *Service) List(ctx context.Context, projectID *uint) ([]models.KPI, error) {
	return s.repo.List(ctx, projectID)
}

// Get loads one KPI
func (s *Service) Get(ctx context.Context, id uint) (*models.KPI, error) {
	return s.repo.Get(ctx, id)
}

// Create stores the KPI and notifies the project's PM, if there is one
func (s *Service) Create(ctx context.Context, in Input) (*models.KPI, error) {
	project, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	kpi := &models.KPI{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		TargetValue: in.TargetValue,
		Type:        in.Type,
		ProjectID:   in.ProjectID,
	}
	if in.CurrentValue != nil {
		kpi.CurrentValue = *in.CurrentValue
	}
	if err := s.repo.Create(ctx, kpi); err != nil {
		return nil, err
	}

	created, err := s.repo.Get(ctx, kpi.ID)
	if err != nil {
		return nil, err
	}
	if project != nil && project.PMID != nil {
		s.notifyPM(ctx, *project.PMID, created)
	}
	return created, nil
}

// Update rewrites the KPI with the supplied fields
func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.KPI, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"nombre": strings.TrimSpace(in.Name),
		"tipo":   in.Type,
	}
	if in.supplies("descripcion", in.Description != nil) {
		fields["descripcion"] = in.Description
	}
	if in.supplies("valor_objetivo", in.TargetValue != nil) {
		fields["valor_objetivo"] = in.TargetValue
	}
	if in.supplies("id_proyecto", in.ProjectID != nil) {
		fields["id_proyecto"] = in.ProjectID
	}
	// valor_actual is NOT NULL, so null is treated as absent
	if in.CurrentValue != nil {
		fields["valor_actual"] = *in.CurrentValue
	}
	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the KPI
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// SetCurrentValue updates only valor_actual. A missing KPI is reported
// before the value is parsed.
func (s *Service) SetCurrentValue(ctx context.Context, id uint, in ProgressInput) (*models.KPI, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	value, err := in.Value()
	if err != nil {
		return nil, err
	}
	if err := checkValue("valor_actual", &value); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"valor_actual": value}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// validate checks the numeric bounds and returns the referenced project, if any
func (s *Service) validate(ctx context.Context, in Input) (*models.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("nombre", "Este campo no puede estar en blanco.")
	}
	if err := checkValue("valor_objetivo", in.TargetValue); err != nil {
		return nil, err
	}
	if err := checkValue("valor_actual", in.CurrentValue); err != nil {
		return nil, err
	}
	if in.ProjectID == nil {
		return nil, nil
	}

	project, err := s.projects.Get(ctx, *in.ProjectID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validation("id_proyecto", "Proyecto no existe")
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// checkValue rejects negative values and values that do not fit the
// NUMERIC(10,2) columns
func checkValue(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 {
		return apperr.Validation(field, "Debe ser >= 0")
	}
	if err := models.CheckNumeric(*v, models.KPIValueDigits, models.DecimalPlaces); err != nil {
		return apperr.Validation(field, err.Error())
	}
	return nil
}

func (s *Service) notifyPM(ctx context.Context, pmID uint, kpi *models.KPI) {
	if s.notifier == nil {
		return
	}
	body := ""
	if kpi.Description != nil {
		body = *kpi.Description
	}
	link := kpiLink
	s.notifier.Dispatch(ctx, notifications.Request{
		UserID: pmID,
		Type:   models.NotificationKPICreated,
		Title:  "KPI creada: " + kpi.Name,
		Body:   &body,
		Link:   &link,
	})
}
