package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := setupService(t)
	r := gin.New()
	RegisterRoutes(r, svc)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginHTTP(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/auth/register", `{"email":"pm@example.com","password":"secreto123","rol":"PM"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/auth/register", `{"email":"pm@example.com","password":"secreto123","rol":"PM"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", w.Code)
	}

	w = do(r, http.MethodPost, "/auth/login", `{"email":"pm@example.com","password":"secreto123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("login response leaks password material: %s", w.Body.String())
	}
	var body struct {
		User map[string]interface{} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.User["email"] != "pm@example.com" || body.User["rol"] != "PM" {
		t.Errorf("unexpected user payload: %v", body.User)
	}

	wrong := do(r, http.MethodPost, "/auth/login", `{"email":"pm@example.com","password":"otra-clave"}`)
	unknown := do(r, http.MethodPost, "/auth/login", `{"email":"nadie@example.com","password":"otra-clave"}`)
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("401 bodies differ: %s vs %s", wrong.Body.String(), unknown.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/auth/register", `{"email":"no-es-email","password":"corta","rol":"Jefe"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"email", "password", "rol"} {
		if _, ok := body.Details[field]; !ok {
			t.Errorf("expected field error for %s, got %v", field, body.Details)
		}
	}
}

func TestListUsersHTTP(t *testing.T) {
	r := newRouter(t)
	do(r, http.MethodPost, "/auth/register", `{"email":"luis.gomez@example.com","password":"secreto123","rol":"Colaborador"}`)

	w := do(r, http.MethodGet, "/usuarios", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var users []UserSummary
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Name != "Luis Gomez" {
		t.Errorf("unexpected users: %+v", users)
	}
}
