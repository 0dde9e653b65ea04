package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/alciverdev/farmatup-API/internal/auth"
	"github.com/alciverdev/farmatup-API/internal/domain/user"
	"github.com/alciverdev/farmatup-API/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(string) (*auth.Claims, error) {
	return f.claims, f.err
}

func protectedRouter(v middlewares.TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	m := middlewares.NewAuthMiddleware(v)
	r := gin.New()

	chain := append([]gin.HandlerFunc{m.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	r.GET("/protected", chain...)
	return r
}

func TestRequireAuth(t *testing.T) {
	okClaims := &auth.Claims{UserID: 42, Email: "jane@x.com", Role: user.RoleAdmin}

	tests := []struct {
		name           string
		header         string
		verifier       *fakeVerifier
		wantStatusCode int
	}{
		{
			name:           "no_header",
			header:         "",
			verifier:       &fakeVerifier{claims: okClaims},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong_scheme",
			header:         "Basic abc123",
			verifier:       &fakeVerifier{claims: okClaims},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty_token",
			header:         "Bearer ",
			verifier:       &fakeVerifier{claims: okClaims},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "verification_fails",
			header:         "Bearer sometoken",
			verifier:       &fakeVerifier{err: errors.New("token expired")},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid_token",
			header:         "Bearer sometoken",
			verifier:       &fakeVerifier{claims: okClaims},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(tt.verifier)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		role           user.Role
		wantStatusCode int
	}{
		{name: "admin_allowed", role: user.RoleAdmin, wantStatusCode: http.StatusOK},
		{name: "employed_forbidden", role: user.RoleEmployed, wantStatusCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{claims: &auth.Claims{UserID: 1, Role: tt.role}}
			m := middlewares.NewAuthMiddleware(verifier)
			r := protectedRouter(verifier, m.RequireRole(user.RoleAdmin))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer sometoken")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	m := middlewares.NewAuthMiddleware(&fakeVerifier{})
	r := gin.New()
	r.GET("/admin", m.RequireRole(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401 when no identity is in context", w.Code)
	}
}
