package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alciverdev/farmatup-API/internal/auth"
	"github.com/alciverdev/farmatup-API/internal/cache"
	"github.com/alciverdev/farmatup-API/internal/config"
	"github.com/alciverdev/farmatup-API/internal/domain/branch"
	httpapi "github.com/alciverdev/farmatup-API/internal/http"
	"github.com/alciverdev/farmatup-API/internal/repo/cached"
	"github.com/alciverdev/farmatup-API/internal/repo/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestAPI wires the full router against in-memory repositories so the
// whole request pipeline (middlewares included) is exercised.
func newTestAPI(t *testing.T) (*gin.Engine, *auth.Manager) {
	t.Helper()

	manager := auth.NewManager("test-secret", time.Hour)
	branches := cached.NewBranches(
		memory.NewBranchesRepo(branch.Branch{ID: 1, Name: "Sucursal Centro"}),
		cache.NewMemory(time.Minute),
	)

	r := httpapi.NewRouter(httpapi.Deps{
		Cfg: config.Config{
			Env:             "test",
			LoginRateLimit:  1000,
			LoginRateWindow: time.Minute,
		},
		Log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Users:    memory.NewUsersRepo(),
		Branches: branches,
		JWT:      manager,
		Issuer:   manager,
		Ping:     func() error { return nil },
	})
	return r, manager
}

func request(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to unmarshal %q: %v", w.Body.String(), err)
	}
}

func TestUserLifecycle(t *testing.T) {
	r, manager := newTestAPI(t)

	registerBody := `{
		"fullname": "Jane Doe",
		"email": "jane@x.com",
		"password": "secret123",
		"role": "admin",
		"num_cel": "555",
		"id_type": "CC",
		"num_id": "1",
		"branch_id": 1
	}`

	// register
	w := request(t, r, http.MethodPost, "/users", registerBody, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: got status %d, want 201, body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Message string `json:"message"`
		UserID  int64  `json:"userId"`
	}
	decode(t, w, &created)
	if created.Message != "User registered successfully" || created.UserID == 0 {
		t.Fatalf("register response = %+v", created)
	}

	// same email again
	w = request(t, r, http.MethodPost, "/users", registerBody, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: got status %d, want 409, body=%s", w.Code, w.Body.String())
	}

	// login, lower-case role in the request was normalized to ADMIN
	w = request(t, r, http.MethodPost, "/api/auth/login", `{"email": "jane@x.com", "password": "secret123"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID   int64  `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	decode(t, w, &login)
	if login.User.Role != "ADMIN" {
		t.Errorf("login role = %q, want ADMIN", login.User.Role)
	}
	if _, err := manager.VerifyAccessToken(login.Token); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}

	// wrong password
	w = request(t, r, http.MethodPost, "/api/auth/login", `{"email": "jane@x.com", "password": "wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: got status %d, want 401", w.Code)
	}

	authHeader := map[string]string{"Authorization": "Bearer " + login.Token}

	// who am I
	w = request(t, r, http.MethodGet, "/api/auth/me", "", authHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("me: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"jane@x.com"`) {
		t.Errorf("me response missing email: %s", w.Body.String())
	}

	// branch listing is admin-only and this token is admin
	w = request(t, r, http.MethodGet, "/branches", "", authHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("branches: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	w = request(t, r, http.MethodGet, "/branches", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("branches without token: got status %d, want 401", w.Code)
	}

	// fetch, profile embeds the branch and never the password
	userPath := "/users/" + strconv.FormatInt(created.UserID, 10)
	w = request(t, r, http.MethodGet, userPath, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Sucursal Centro") {
		t.Errorf("profile missing embedded branch: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") || strings.Contains(w.Body.String(), "$2a$") {
		t.Errorf("profile leaks password material: %s", w.Body.String())
	}

	// partial update touches only the supplied field
	w = request(t, r, http.MethodPatch, userPath, `{"fullname": "Jane Roe"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Jane Roe") || !strings.Contains(w.Body.String(), "jane@x.com") {
		t.Errorf("update response = %s", w.Body.String())
	}

	// delete, then the user is gone
	w = request(t, r, http.MethodDelete, userPath, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	w = request(t, r, http.MethodGet, userPath, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got status %d, want 404", w.Code)
	}
	w = request(t, r, http.MethodDelete, userPath, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got status %d, want 404", w.Code)
	}
}

func TestUnknownBodyFieldsRejected(t *testing.T) {
	r, _ := newTestAPI(t)

	w := request(t, r, http.MethodPost, "/api/auth/login",
		`{"email": "jane@x.com", "password": "secret123", "remember_me": true}`, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "unknown_field") {
		t.Errorf("expected an unknown_field detail, body=%s", w.Body.String())
	}
}

func TestRegisterWithUnknownBranch(t *testing.T) {
	r, _ := newTestAPI(t)

	body := `{
		"fullname": "Jane Doe",
		"email": "jane@x.com",
		"password": "secret123",
		"role": "employed",
		"num_cel": "555",
		"id_type": "CC",
		"num_id": "1",
		"branch_id": 99
	}`
	w := request(t, r, http.MethodPost, "/users", body, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Branch not found") {
		t.Errorf("body = %s, want Branch not found", w.Body.String())
	}
}

func TestMutatingRequestsRequireJSON(t *testing.T) {
	r, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("fullname=Jane"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestAPI(t)

	if w := request(t, r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz: got status %d, want 200", w.Code)
	}
	if w := request(t, r, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("readyz: got status %d, want 200", w.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	manager := auth.NewManager("test-secret", time.Hour)
	r := httpapi.NewRouter(httpapi.Deps{
		Cfg: config.Config{
			Env:             "test",
			LoginRateLimit:  2,
			LoginRateWindow: time.Minute,
		},
		Log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Users:    memory.NewUsersRepo(),
		Branches: memory.NewBranchesRepo(),
		JWT:      manager,
		Issuer:   manager,
		Ping:     func() error { return nil },
	})

	body := `{"email": "jane@x.com", "password": "whatever"}`
	for i := 0; i < 2; i++ {
		if w := request(t, r, http.MethodPost, "/api/auth/login", body, nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got status %d, want 401", i+1, w.Code)
		}
	}

	w := request(t, r, http.MethodPost, "/api/auth/login", body, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429 once over the limit", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response is missing the Retry-After header")
	}
}
