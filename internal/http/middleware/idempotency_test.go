package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type idemSeen struct {
	key            string
	replay, bypass bool
}

func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup) (*gin.Engine, *idemSeen) {
	seen := &idemSeen{}
	r := gin.New()
	r.POST("/repairs", IdempotencyValidator(opts, lookup), func(c *gin.Context) {
		seen.key, _ = GetIdempotencyKey(c)
		seen.replay = IsReplay(c)
		seen.bypass = IsRateBypass(c)
		c.Status(http.StatusNoContent)
	})
	return r, seen
}

func TestIdempotencyValidator_NoHeaderIsNoop(t *testing.T) {
	r, seen := idemRouter(IdempotencyOptions{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/repairs", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}
	if seen.key != "" || seen.replay {
		t.Fatalf("context polluted without header: %+v", seen)
	}
}

func TestIdempotencyValidator_RejectsMalformedKey(t *testing.T) {
	r, _ := idemRouter(IdempotencyOptions{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/repairs", nil)
	req.Header.Set(HeaderIdempotencyKey, "spaces are not allowed")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestIdempotencyValidator_UserResolverKeysTheLookup(t *testing.T) {
	var lookupUser string
	lookup := func(_ context.Context, userID, _, _ string, _ time.Time) (bool, error) {
		lookupUser = userID
		return userID == "u42", nil
	}
	opts := IdempotencyOptions{
		User: func(c *gin.Context) string {
			if c.GetHeader("Authorization") == "Bearer tok" {
				return "u42"
			}
			return ""
		},
	}
	r, seen := idemRouter(opts, lookup)

	req := httptest.NewRequest(http.MethodPost, "/repairs", nil)
	req.Header.Set(HeaderIdempotencyKey, "retry-1")
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}
	if lookupUser != "u42" {
		t.Fatalf("lookup keyed by %q; want the resolved user", lookupUser)
	}
	if !seen.replay || !seen.bypass {
		t.Fatalf("replay/bypass flags = %v/%v; want true/true", seen.replay, seen.bypass)
	}
}

func TestIdempotencyValidator_ResolverFallsBackToAnonymous(t *testing.T) {
	var lookupUser string
	lookup := func(_ context.Context, userID, _, _ string, _ time.Time) (bool, error) {
		lookupUser = userID
		return false, nil
	}
	opts := IdempotencyOptions{
		User: func(*gin.Context) string { return "" },
	}
	r, seen := idemRouter(opts, lookup)

	req := httptest.NewRequest(http.MethodPost, "/repairs", nil)
	req.Header.Set(HeaderIdempotencyKey, "retry-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if lookupUser != "anonymous" {
		t.Fatalf("lookup keyed by %q; want anonymous fallback", lookupUser)
	}
	if seen.replay || seen.bypass {
		t.Fatalf("flags set without a stored record: %+v", seen)
	}
}
