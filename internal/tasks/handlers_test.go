package tasks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/models"
)

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := setup(t)
	r := gin.New()
	RegisterRoutes(r, f.svc)
	return r, f
}

func TestTaskHTTPFlow(t *testing.T) {
	r, f := newRouter(t)

	w := do(r, http.MethodPost, "/tareas", fmt.Sprintf(`{"id_proyecto":%d,"titulo":"T1","prioridad":"Alta"}`, f.project.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatal(err)
	}
	if task.Progress != 0 || task.Status != "Pendiente" || task.Priority != "Alta" {
		t.Errorf("unexpected task: %s", w.Body.String())
	}
	base := fmt.Sprintf("/tareas/%d", task.ID)

	w = do(r, http.MethodPost, base+"/tiempo", fmt.Sprintf(`{"id_tarea":%d,"id_usuario":%d,"horas":2.5}`, task.ID, f.user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("tiempo: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var logged struct {
		OK         bool    `json:"ok"`
		TotalHoras float64 `json:"total_horas"`
	}
	json.Unmarshal(w.Body.Bytes(), &logged)
	if !logged.OK || logged.TotalHoras != 2.5 {
		t.Errorf("unexpected tiempo body: %s", w.Body.String())
	}

	w = do(r, http.MethodGet, base+"/tiempo?fecha=no-es-fecha", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"horas":2.5`) {
		t.Errorf("list tiempo: got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, base+"/progress", `{"progreso":150}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"estado":"Completada"`) {
		t.Errorf("progress: got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, base+"/duedate", `{"fecha_vencimiento":"2026-11-30"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"fecha_vencimiento":"2026-11-30"`) {
		t.Errorf("duedate: got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, fmt.Sprintf("/proyectos/%d/tareas", f.project.ID), "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total_horas":2.5`) {
		t.Errorf("list: got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodDelete, base+"/delete", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, base+"/complete", ""); w.Code != http.StatusNotFound {
		t.Errorf("complete after delete: expected 404, got %d", w.Code)
	}
}

func TestTaskHTTPValidation(t *testing.T) {
	r, f := newRouter(t)
	task := f.createTask(t, "T1")
	base := fmt.Sprintf("/tareas/%d", task.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"missing titulo", http.MethodPost, "/tareas", fmt.Sprintf(`{"id_proyecto":%d}`, f.project.ID)},
		{"bad prioridad", http.MethodPost, "/tareas", fmt.Sprintf(`{"id_proyecto":%d,"titulo":"x","prioridad":"Urgente"}`, f.project.ID)},
		{"zero hours", http.MethodPost, base + "/tiempo", fmt.Sprintf(`{"id_usuario":%d,"horas":0}`, f.user.ID)},
		{"negative hours", http.MethodPost, base + "/tiempo", fmt.Sprintf(`{"id_usuario":%d,"horas":-1}`, f.user.ID)},
		{"hours overflow", http.MethodPost, base + "/tiempo", fmt.Sprintf(`{"id_usuario":%d,"horas":12345.678}`, f.user.ID)},
		{"hours with three decimals", http.MethodPost, base + "/tiempo", fmt.Sprintf(`{"id_usuario":%d,"horas":1.234}`, f.user.ID)},
		{"progreso with three decimals", http.MethodPost, base + "/progress", `{"progreso":33.333}`},
		{"missing progreso", http.MethodPost, base + "/progress", `{"estado":"Pendiente"}`},
		{"bad date", http.MethodPost, base + "/duedate", `{"fecha_vencimiento":"mañana"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
