package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/jimdaga/gestor/internal/accounts"
	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"github.com/jimdaga/gestor/internal/testdb"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	users, err := accounts.NewService(accounts.NewRepository(db))
	if err != nil {
		t.Fatal(err)
	}
	return NewService(NewRepository(db), users), db
}

func TestCreateValidatesPM(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	active := testdb.CreateUser(t, db, "pm@example.com", true)
	inactive := testdb.CreateUser(t, db, "old@example.com", false)

	p, err := svc.Create(ctx, Input{Name: "Alpha", PMID: &active.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 || p.Name != "Alpha" || p.PMID == nil || *p.PMID != active.ID {
		t.Errorf("unexpected project: %+v", p)
	}

	missing := uint(999)
	for _, pm := range []*uint{&inactive.ID, &missing} {
		_, err := svc.Create(ctx, Input{Name: "Beta", PMID: pm})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("pm %d: expected validation error, got %v", *pm, err)
		}
	}

	var count int64
	db.Model(&models.Project{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 project, got %d", count)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	pm := testdb.CreateUser(t, db, "pm@example.com", true)

	desc := "primera"
	start := models.NewDate(2026, 3, 1)
	p, err := svc.Create(ctx, Input{Name: "Alpha", Description: &desc, StartDate: &start, PMID: &pm.ID})
	if err != nil {
		t.Fatal(err)
	}

	end := models.NewDate(2026, 6, 30)
	updated, err := svc.Update(ctx, p.ID, Input{Name: "Alpha 2", EndDate: &end})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Alpha 2" || updated.Description != nil || updated.StartDate != nil || updated.PMID != nil {
		t.Errorf("expected cleared optional fields, got %+v", updated)
	}
	if updated.EndDate == nil || updated.EndDate.String() != "2026-06-30" {
		t.Errorf("unexpected end date: %v", updated.EndDate)
	}

	inactive := testdb.CreateUser(t, db, "old@example.com", false)
	if _, err := svc.Update(ctx, p.ID, Input{Name: "Alpha", PMID: &inactive.ID}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for inactive PM, got %v", err)
	}
	if _, err := svc.Update(ctx, 999, Input{Name: "X"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: "Alpha"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected deleted project to be gone, got %v", err)
	}
	if err := svc.Delete(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: expected not found, got %v", err)
	}
}
