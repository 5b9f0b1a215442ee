package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

func newAuthService() *auth.Service {
	return auth.NewService(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
}

func tokenFor(t *testing.T, svc *auth.Service, role models.Role) (string, *models.User) {
	t.Helper()
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "user-" + string(role),
		Name:     "Test " + string(role),
		Role:     role,
	}
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	return token, user
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := newAuthService()
	middleware := NewAuthMiddleware(authService)

	t.Run("valid token", func(t *testing.T) {
		token, user := tokenFor(t, authService, models.RoleTechnician)
		req := httptest.NewRequest("GET", "/api/requests", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			actor, ok := GetActor(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.Actor(), actor)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	rejected := []struct {
		name   string
		header string
	}{
		{"missing authorization header", ""},
		{"invalid token", "Bearer invalid-token"},
		{"wrong scheme", "Token abc"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/requests", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	t.Run("skip auth path", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	authService := newAuthService()
	middleware := NewAuthMiddleware(authService)

	tests := []struct {
		role     models.Role
		expected int
	}{
		{models.RoleManager, http.StatusOK},
		{models.RoleTechnician, http.StatusOK},
		{models.RoleEmployee, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			token, _ := tokenFor(t, authService, tt.role)
			req := httptest.NewRequest("GET", "/api/pm-schedules", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			chain := middleware.Authenticate(middleware.RequireRole(models.RoleManager, models.RoleTechnician)(handler))
			chain.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}

	t.Run("no claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		middleware.RequireRole(models.RoleManager)(handler).ServeHTTP(w, httptest.NewRequest("GET", "/api/stats", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 1)
	handler := limiter.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serve := func(addr, forwarded string) int {
		req := httptest.NewRequest("GET", "/api/requests", nil)
		req.RemoteAddr = addr
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("192.168.1.1:12345", ""))
	assert.Equal(t, http.StatusTooManyRequests, serve("192.168.1.1:23456", ""))
	assert.Equal(t, http.StatusOK, serve("192.168.1.2:12345", ""))
	assert.Equal(t, http.StatusOK, serve("192.168.1.1:12345", "10.0.0.7, 192.168.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, serve("192.168.1.9:1", "10.0.0.7"))
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := newIPRateLimiter(rate.Every(time.Hour), 1, 50*time.Millisecond)

	assert.True(t, limiter.GetLimiter("192.168.1.1").Allow())
	assert.False(t, limiter.GetLimiter("192.168.1.1").Allow())
	for n := 2; n <= 5; n++ {
		limiter.GetLimiter("192.168.1." + string(rune('0'+n)))
	}
	assert.Equal(t, 5, limiter.limiters.ItemCount())

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, limiter.limiters.ItemCount())
	assert.True(t, limiter.GetLimiter("192.168.1.1").Allow(), "an evicted client starts with a fresh bucket")
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 65))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestAccessLog_RecordsStatus(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), RequestID, AccessLog)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetUserFromContext(t *testing.T) {
	claims := &models.Claims{UserID: "test-id", Username: "testuser", Name: "Test", Role: models.RoleManager}
	ctx := context.WithValue(context.Background(), UserContextKey, claims)

	retrieved, ok := GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, retrieved)

	actor, ok := GetActor(ctx)
	assert.True(t, ok)
	assert.Equal(t, models.Actor{ID: "test-id", Name: "Test", Role: models.RoleManager}, actor)

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
	_, ok = GetActor(context.Background())
	assert.False(t, ok)
}
