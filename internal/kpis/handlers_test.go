package kpis

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestKPIHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := setup(t)
	r := gin.New()
	RegisterRoutes(r, svc)

	w := do(r, http.MethodPost, "/kpis", `{"nombre":"Ventas","tipo":"Financiero","valor_objetivo":100}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	kpi, _ := svc.List(t.Context(), nil)
	path := fmt.Sprintf("/kpis/%d", kpi[0].ID)

	if w := do(r, http.MethodPost, "/kpis", `{"nombre":"x","tipo":"Otro"}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad tipo: expected 400, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/kpis", `{"nombre":"x","tipo":"Cliente","valor_actual":-3}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative valor_actual: expected 400, got %d", w.Code)
	}

	w = do(r, http.MethodPost, path+"/progress", `{"valor_actual":"55"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"valor_actual":55`) {
		t.Errorf("progress: got %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, path+"/progress", `{"valor_actual":"mucho"}`); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric progress: expected 400, got %d", w.Code)
	}

	if w := do(r, http.MethodPost, "/kpis/999/progress", `{"valor_actual":"mucho"}`); w.Code != http.StatusNotFound {
		t.Errorf("missing kpi: expected 404, got %d", w.Code)
	}

	w = do(r, http.MethodPut, path, `{"nombre":"Ventas Q2","tipo":"Financiero"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"valor_objetivo":100`) {
		t.Errorf("put without valor_objetivo should keep it: %d %s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodGet, "/kpis?id_proyecto=abc", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Ventas"`) {
		t.Errorf("non-numeric filter must be ignored: %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodDelete, path, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("get deleted: expected 404, got %d", w.Code)
	}
}
