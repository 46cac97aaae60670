package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/models"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type stubAuthenticator struct {
	users map[string]*models.User
}

func (s stubAuthenticator) Authenticate(token string) (*models.User, error) {
	if user, ok := s.users[token]; ok {
		return user, nil
	}
	return nil, errors.New("invalid token")
}

type stubAdminChecker struct {
	admins map[uint]bool
	err    error
	calls  int
}

func (s *stubAdminChecker) IsAdmin(_ context.Context, userID uint) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.admins[userID], nil
}

func newGuardedEngine(checker AdminChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := stubAuthenticator{users: map[string]*models.User{
		"admin-token":    {ID: 1, Email: "admin@cellar.test"},
		"customer-token": {ID: 2, Email: "buyer@example.com"},
	}}
	r := gin.New()
	admin := r.Group("/api/v1/admin")
	admin.Use(UserAuthMiddleware(auth, false), AdminGuard(checker))
	admin.GET("/ping", func(c *gin.Context) {
		rc := handlershared.RequestContextFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": rc.UserID, "is_admin": rc.IsAdmin})
	})
	return r
}

func serveWithToken(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAdminGuardStatuses(t *testing.T) {
	checker := &stubAdminChecker{admins: map[uint]bool{1: true}}
	r := newGuardedEngine(checker)

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{name: "anonymous", token: "", want: http.StatusUnauthorized},
		{name: "bad token", token: "forged", want: http.StatusUnauthorized},
		{name: "customer", token: "customer-token", want: http.StatusForbidden},
		{name: "admin", token: "admin-token", want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serveWithToken(r, tc.token)
			if w.Code != tc.want {
				t.Fatalf("status want %d got %d body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}

	w := serveWithToken(r, "admin-token")
	var resp struct {
		UserID  uint `json:"user_id"`
		IsAdmin bool `json:"is_admin"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.UserID != 1 || !resp.IsAdmin {
		t.Fatalf("unexpected request context: %+v", resp)
	}
}

func TestAdminGuardSkipsCheckerForAnonymous(t *testing.T) {
	checker := &stubAdminChecker{admins: map[uint]bool{}}
	r := newGuardedEngine(checker)
	serveWithToken(r, "")
	if checker.calls != 0 {
		t.Fatalf("checker should not run for anonymous requests, calls=%d", checker.calls)
	}
}

func TestAdminGuardCheckerFailure(t *testing.T) {
	r := newGuardedEngine(&stubAdminChecker{err: errors.New("casbin down")})
	w := serveWithToken(r, "admin-token")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "casbin down") {
		t.Fatalf("raw backend error leaked: %s", w.Body.String())
	}
}

func TestUserAuthMiddlewareRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(UserAuthMiddleware(stubAuthenticator{}, true))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if body["error"] != "Unauthorized" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestBearerToken(t *testing.T) {
	if token, ok := bearerToken("Bearer abc"); !ok || token != "abc" {
		t.Fatalf("expected abc, got %q %v", token, ok)
	}
	if token, ok := bearerToken("bearer  xyz "); !ok || token != "xyz" {
		t.Fatalf("expected xyz, got %q %v", token, ok)
	}
	if _, ok := bearerToken("Basic abc"); ok {
		t.Fatalf("basic auth should not be accepted")
	}
	if _, ok := bearerToken("Bearer "); ok {
		t.Fatalf("empty bearer should not be accepted")
	}
}
