package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

func authRouter(verify TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireAuth(verify), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	r := authRouter(func(string) (string, error) { return "u1", nil })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestRequireAuth_WrongScheme(t *testing.T) {
	r := authRouter(func(string) (string, error) { return "u1", nil })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	r := authRouter(func(string) (string, error) { return "", errors.New("bad token") })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestRequireAuth_SetsUserID(t *testing.T) {
	var seen string
	r := authRouter(func(token string) (string, error) {
		seen = token
		return "u42", nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer  tok-123 ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if seen != "tok-123" {
		t.Fatalf("verifier saw %q; want trimmed token", seen)
	}
	if w.Body.String() != "u42" {
		t.Fatalf("UserID = %q; want u42", w.Body.String())
	}
}

func TestIdempotencyScope_UsesMethodAndRoute(t *testing.T) {
	r := gin.New()
	var scope string
	r.POST("/api/v1/repairs", func(c *gin.Context) {
		scope = IdempotencyScope(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/repairs", nil))

	if scope != "POST /api/v1/repairs" {
		t.Fatalf("scope = %q; want POST /api/v1/repairs", scope)
	}
}
