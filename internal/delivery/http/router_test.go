package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/http/handler"
	"github.com/Pesokrava/storefront/internal/pkg/auth"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

func testRouter() (http.Handler, config.AuthConfig) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			JWTIssuer:       "storefront",
			CronToken:       "cron-secret",
			GuestCookieName: "guest_session",
			GuestCookieTTL:  time.Hour,
		},
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
	}
	log := logger.New("test")
	handlers := Handlers{
		Health: handler.NewHealthHandler(nil, log),
	}
	return NewRouter(handlers, nil, nil, cfg, log).Setup(), cfg.Auth
}

func token(t *testing.T, cfg config.AuthConfig, role string) string {
	t.Helper()
	tok, err := auth.MintToken(cfg, time.Now(), time.Hour, auth.Identity{UserID: uuid.New(), Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouter_Health(t *testing.T) {
	r, _ := testRouter()
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	r, authCfg := testRouter()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"invalid token", "Bearer not-a-token", http.StatusUnauthorized},
		{"customer", token(t, authCfg, "customer"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_CustomerRoutesRequireAuth(t *testing.T) {
	r, _ := testRouter()

	for _, path := range []string{"/api/v1/me", "/api/v1/orders", "/api/v1/refunds"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_SMSTickRequiresCronToken(t *testing.T) {
	r, _ := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/internal/sms/tick", nil)
	req.Header.Set("X-Cron-Token", "wrong")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_GuestSessionCookieIssued(t *testing.T) {
	r, _ := testRouter()
	w := httptest.NewRecorder()

	// rejected by RequireAuth, but the session middleware runs first
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "guest_session", cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}
