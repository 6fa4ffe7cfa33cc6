package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jimdaga/gestor/internal/accounts"
	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"github.com/jimdaga/gestor/internal/notifications"
	"github.com/jimdaga/gestor/internal/projects"
	"github.com/jimdaga/gestor/internal/testdb"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	mu       sync.Mutex
	requests []notifications.Request
}

func (d *recordingDispatcher) Dispatch(_ context.Context, req notifications.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	notifier *recordingDispatcher
	user     models.User
	project  models.Project
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	users, err := accounts.NewService(accounts.NewRepository(db))
	if err != nil {
		t.Fatal(err)
	}
	projectSvc := projects.NewService(projects.NewRepository(db), users)
	notifier := &recordingDispatcher{}
	return &fixture{
		svc:      NewService(NewRepository(db), users, projectSvc, notifier),
		db:       db,
		notifier: notifier,
		user:     testdb.CreateUser(t, db, "ana@example.com", true),
		project:  testdb.CreateProject(t, db, "Alpha", nil),
	}
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t, testdb.Open(t))
}

func (f *fixture) createTask(t *testing.T, title string) *models.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), Input{ProjectID: f.project.ID, Title: title})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func hours(v float64) *float64 { return &v }

func TestCreateDefaults(t *testing.T) {
	f := setup(t)

	task := f.createTask(t, "T1")
	if task.Progress != 0 || task.Status != models.TaskStatusPendiente || task.Priority != models.PriorityMedia {
		t.Errorf("unexpected defaults: %+v", task)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected fecha_creacion to be set")
	}
	if len(f.notifier.requests) != 0 {
		t.Errorf("unassigned task must not notify, got %+v", f.notifier.requests)
	}
}

func TestCreateValidatesReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	inactive := testdb.CreateUser(t, f.db, "old@example.com", false)

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"missing project", Input{ProjectID: 999, Title: "T"}, "id_proyecto"},
		{"inactive assignee", Input{ProjectID: f.project.ID, Title: "T", AssigneeID: &inactive.ID}, "id_usuario_asignado"},
		{"blank title", Input{ProjectID: f.project.ID, Title: "   "}, "titulo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.in)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if appErr.Fields[tt.field] == "" {
				t.Errorf("expected %s detail, got %v", tt.field, appErr.Fields)
			}
		})
	}
}

func TestAssignmentNotifications(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	desc := "detalle"

	task, err := f.svc.Create(ctx, Input{ProjectID: f.project.ID, Title: "T1", Description: &desc, AssigneeID: &f.user.ID})
	if err != nil {
		t.Fatal(err)
	}

	other := testdb.CreateUser(t, f.db, "luis@example.com", true)
	if _, err := f.svc.Update(ctx, task.ID, Input{ProjectID: f.project.ID, Title: "T1b", AssigneeID: &other.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Assign(ctx, task.ID, AssignInput{AssigneeID: &f.user.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Assign(ctx, task.ID, AssignInput{}); err != nil {
		t.Fatal(err)
	}

	want := []struct {
		user  uint
		title string
		body  string
	}{
		{f.user.ID, "Tarea asignada: T1", "detalle"},
		{other.ID, "Te asignaron una tarea: T1b", ""},
		{f.user.ID, "Te asignaron una tarea: T1b", ""},
	}
	if len(f.notifier.requests) != len(want) {
		t.Fatalf("expected %d notifications, got %+v", len(want), f.notifier.requests)
	}
	for i, w := range want {
		got := f.notifier.requests[i]
		if got.UserID != w.user || got.Title != w.title || got.Type != models.NotificationTaskAssigned {
			t.Errorf("notification %d: got %+v", i, got)
		}
		if got.Body == nil || *got.Body != w.body || got.Link == nil || *got.Link != "/dashboard/tarea" {
			t.Errorf("notification %d: unexpected body/link %+v", i, got)
		}
	}

	stored, _ := f.svc.repo.Get(ctx, task.ID)
	if stored.AssigneeID != nil {
		t.Errorf("expected assignee cleared, got %v", *stored.AssigneeID)
	}
}

func TestUnknownTaskIsNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	const missing = 404

	checks := map[string]error{}
	_, checks["update"] = f.svc.Update(ctx, missing, Input{ProjectID: f.project.ID, Title: "x"})
	_, checks["assign"] = f.svc.Assign(ctx, missing, AssignInput{})
	_, checks["duedate"] = f.svc.SetDueDate(ctx, missing, DueDateInput{})
	_, checks["complete"] = f.svc.Complete(ctx, missing)
	_, checks["progress"] = f.svc.SetProgress(ctx, missing, ProgressInput{Progress: hours(10)})
	_, checks["tiempo"] = f.svc.LogTime(ctx, missing, TimeInput{UserID: f.user.ID, Hours: hours(1)})
	_, checks["list tiempo"] = f.svc.ListTime(ctx, missing, TimeFilter{})
	checks["delete"] = f.svc.Delete(ctx, missing)

	for op, err := range checks {
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: expected not found, got %v", op, err)
		}
	}
}

func TestSetProgressDerivesStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, "T1")

	tests := []struct {
		in           float64
		wantProgress float64
		wantStatus   string
	}{
		{0, 0, models.TaskStatusPendiente},
		{45, 45, models.TaskStatusEnProgreso},
		{150, 100, models.TaskStatusCompletada},
		{-5, 0, models.TaskStatusPendiente},
	}
	for _, tt := range tests {
		got, err := f.svc.SetProgress(ctx, task.ID, ProgressInput{Progress: hours(tt.in)})
		if err != nil {
			t.Fatalf("progress %v: %v", tt.in, err)
		}
		if got.Progress != tt.wantProgress || got.Status != tt.wantStatus {
			t.Errorf("progress %v: got (%v, %s), want (%v, %s)", tt.in, got.Progress, got.Status, tt.wantProgress, tt.wantStatus)
		}
	}
}

func TestSetProgressExplicitStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, "T1")

	status := models.TaskStatusEnProgreso
	got, err := f.svc.SetProgress(ctx, task.ID, ProgressInput{Progress: hours(100), Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if got.Progress != 100 || got.Status != models.TaskStatusEnProgreso {
		t.Errorf("explicit status must be kept, got (%v, %s)", got.Progress, got.Status)
	}

	bad := "Bloqueada"
	if _, err := f.svc.SetProgress(ctx, task.ID, ProgressInput{Progress: hours(10), Status: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown status: expected validation error, got %v", err)
	}
	if _, err := f.svc.SetProgress(ctx, task.ID, ProgressInput{Progress: hours(120), Status: &status}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("out of range progress: expected validation error, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	f := setup(t)
	task := f.createTask(t, "T1")

	got, err := f.svc.Complete(context.Background(), task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Progress != 100 || got.Status != models.TaskStatusCompletada {
		t.Errorf("got (%v, %s)", got.Progress, got.Status)
	}
}

func TestSetDueDate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, "T1")

	due := models.NewDate(2026, 12, 24)
	got, err := f.svc.SetDueDate(ctx, task.ID, DueDateInput{DueDate: &due})
	if err != nil {
		t.Fatal(err)
	}
	if got.DueDate == nil || got.DueDate.String() != "2026-12-24" {
		t.Fatalf("unexpected due date: %v", got.DueDate)
	}

	got, err = f.svc.SetDueDate(ctx, task.ID, DueDateInput{})
	if err != nil {
		t.Fatal(err)
	}
	if got.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", got.DueDate)
	}
}

func TestLogTimeTotals(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, "T1")

	total, err := f.svc.LogTime(ctx, task.ID, TimeInput{UserID: f.user.ID, Hours: hours(2.5)})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2.5 {
		t.Errorf("expected 2.5, got %v", total)
	}
	note := "revisión"
	total, err = f.svc.LogTime(ctx, task.ID, TimeInput{UserID: f.user.ID, Hours: hours(1.5), Note: &note})
	if err != nil {
		t.Fatal(err)
	}
	if total != 4.0 {
		t.Errorf("expected 4.0, got %v", total)
	}

	list, err := f.svc.ListByProject(ctx, f.project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].TotalHours != 4.0 {
		t.Errorf("expected total_horas 4.0 in listing, got %+v", list)
	}

	inactive := testdb.CreateUser(t, f.db, "old@example.com", false)
	if _, err := f.svc.LogTime(ctx, task.ID, TimeInput{UserID: inactive.ID, Hours: hours(1)}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("inactive user: expected validation error, got %v", err)
	}
}

func TestNumericInputMustFitColumns(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, "T1")

	for _, h := range []float64{12345.678, 1000, 1.234} {
		if _, err := f.svc.LogTime(ctx, task.ID, TimeInput{UserID: f.user.ID, Hours: hours(h)}); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("horas %v: expected validation error, got %v", h, err)
		}
	}
	if total, err := f.svc.LogTime(ctx, task.ID, TimeInput{UserID: f.user.ID, Hours: hours(999.99)}); err != nil || total != 999.99 {
		t.Errorf("horas 999.99: total=%v err=%v", total, err)
	}
	if _, err := f.svc.SetProgress(ctx, task.ID, ProgressInput{Progress: hours(33.333)}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("progreso 33.333: expected validation error, got %v", err)
	}
}

func TestLogTimeWithoutNoteColumn(t *testing.T) {
	db := testdb.OpenEmpty(t)
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.Task{}); err != nil {
		t.Fatal(err)
	}
	err := db.Exec(`CREATE TABLE tiempo_tareas (
		id_registro INTEGER PRIMARY KEY AUTOINCREMENT,
		id_tarea INTEGER NOT NULL,
		id_usuario INTEGER NOT NULL,
		horas REAL NOT NULL,
		fecha_registro DATETIME
	)`).Error
	if err != nil {
		t.Fatal(err)
	}

	f := newFixture(t, db)
	task := f.createTask(t, "T1")
	note := "se pierde"

	total, err := f.svc.LogTime(context.Background(), task.ID, TimeInput{UserID: f.user.ID, Hours: hours(3), Note: &note})
	if err != nil {
		t.Fatalf("expected insert without note to succeed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3, got %v", total)
	}
}

func TestListTimeFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, "T1")

	days := []time.Time{
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC),
	}
	for _, d := range days {
		entry := models.TimeEntry{TaskID: task.ID, UserID: f.user.ID, Hours: 1, RecordedAt: d}
		if err := f.db.Create(&entry).Error; err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name                string
		fecha, desde, hasta string
		want                int
	}{
		{"no filter", "", "", "", 3},
		{"exact day", "2026-03-02", "", "", 1},
		{"range inclusive", "", "2026-03-01", "2026-03-02", 2},
		{"open start", "", "", "2026-03-03", 2},
		{"open end", "", "2026-03-02", "", 2},
		{"fecha wins", "2026-03-04", "2026-03-01", "2026-03-02", 1},
		{"malformed ignored", "", "2026-03-02", "ayer", 3},
		{"malformed fecha ignored", "03/02/2026", "", "", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := f.svc.ListTime(ctx, task.ID, ParseTimeFilter(tt.fecha, tt.desde, tt.hasta))
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, len(entries))
			}
		})
	}

	entries, _ := f.svc.ListTime(ctx, task.ID, TimeFilter{})
	if !entries[0].RecordedAt.Equal(days[2]) {
		t.Errorf("expected newest first, got %v", entries[0].RecordedAt)
	}
}

func TestDeleteRemovesEntries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, "T1")
	if _, err := f.svc.LogTime(ctx, task.ID, TimeInput{UserID: f.user.ID, Hours: hours(1)}); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var count int64
	f.db.Model(&models.TimeEntry{}).Where("id_tarea = ?", task.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected time entries removed, got %d", count)
	}
	if err := f.svc.Delete(ctx, task.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: expected not found, got %v", err)
	}
}
