package middlewares_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGuard struct {
	resolveFn func(ctx context.Context, token string) (user.User, error)
}

func (f *fakeGuard) ResolveCurrentUser(ctx context.Context, token string) (user.User, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, token)
	}
	return user.User{}, auth.ErrUnauthenticated
}

func (f *fakeGuard) RequireRole(u user.User, allowed ...user.Role) error {
	if !u.Role.In(allowed...) {
		return auth.ErrUnauthorized
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	guard := &fakeGuard{
		resolveFn: func(ctx context.Context, token string) (user.User, error) {
			switch token {
			case "good":
				return user.User{ID: 7, Username: "alice", Role: user.RoleTeacher}, nil
			case "broken-store":
				return user.User{}, errors.New("db down")
			default:
				return user.User{}, auth.ErrUnauthenticated
			}
		},
	}

	m := middlewares.NewAuthMiddleware(guard, discardLogger())

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		u, ok := middlewares.CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, u.Username)
	})

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
		wantChallenge  bool
	}{
		{name: "no header", wantStatusCode: http.StatusUnauthorized, wantChallenge: true},
		{name: "wrong scheme", header: "Basic abc", wantStatusCode: http.StatusUnauthorized, wantChallenge: true},
		{name: "empty token", header: "Bearer   ", wantStatusCode: http.StatusUnauthorized, wantChallenge: true},
		{name: "invalid token", header: "Bearer nope", wantStatusCode: http.StatusUnauthorized, wantChallenge: true},
		{name: "valid token", header: "Bearer good", wantStatusCode: http.StatusOK},
		{name: "lower case scheme", header: "bearer good", wantStatusCode: http.StatusOK},
		{name: "store failure", header: "Bearer broken-store", wantStatusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			gotChallenge := w.Header().Get("WWW-Authenticate") == "Bearer"
			if gotChallenge != tt.wantChallenge {
				t.Fatalf("WWW-Authenticate challenge=%v, want %v", gotChallenge, tt.wantChallenge)
			}

			if tt.wantStatusCode == http.StatusOK && w.Body.String() != "alice" {
				t.Fatalf("handler saw user %q", w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	roles := map[string]user.Role{
		"teacher-token": user.RoleTeacher,
		"admin-token":   user.Role("Admin"),
		"manager-token": user.RoleManager,
	}

	guard := &fakeGuard{
		resolveFn: func(ctx context.Context, token string) (user.User, error) {
			role, ok := roles[token]
			if !ok {
				return user.User{}, auth.ErrUnauthenticated
			}
			return user.User{Username: token, Role: role}, nil
		},
	}
	m := middlewares.NewAuthMiddleware(guard, discardLogger())

	r := gin.New()
	r.DELETE("/schools/:id", m.RequireAuth(), m.RequireRole(auth.PrivilegedRoles...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		token          string
		wantStatusCode int
	}{
		{token: "teacher-token", wantStatusCode: http.StatusForbidden},
		{token: "admin-token", wantStatusCode: http.StatusOK},
		{token: "manager-token", wantStatusCode: http.StatusOK},
		{token: "unknown", wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodDelete, "/schools/1", nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tt.wantStatusCode {
			t.Fatalf("%s: got status %d, want %d, body=%s", tt.token, w.Code, tt.wantStatusCode, w.Body.String())
		}
	}
}

func TestRequireRole_WithoutAuthIsUnauthenticated(t *testing.T) {
	m := middlewares.NewAuthMiddleware(&fakeGuard{}, discardLogger())

	r := gin.New()
	r.GET("/x", m.RequireRole(user.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	guard := &fakeGuard{
		resolveFn: func(ctx context.Context, token string) (user.User, error) {
			return user.User{Username: "bob", Role: user.RoleAdmin}, nil
		},
	}
	m := middlewares.NewAuthMiddleware(guard, discardLogger())

	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(log))
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer any")
	req.Header.Set("X-Request-Id", "req-123")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id not echoed, got %q", got)
	}

	line := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"actor":"bob"`, `"route":"/me"`, `"status":204`} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %s: %s", want, line)
		}
	}
}

func TestRequestID_Generated(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(w.Header().Get("X-Request-Id")) != 36 {
		t.Fatalf("expected a generated uuid, got %q", w.Header().Get("X-Request-Id"))
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allowed origin not echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin must not be allowed, got %q", got)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.POST("/", middlewares.RequireJSON(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got %d, want 415", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}
}
