package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/auth"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

type identityKey struct{}

// WithIdentity stores the caller identity on the context
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the authenticated caller, if any
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// Authenticator validates bearer tokens
type Authenticator struct {
	cfg    config.AuthConfig
	logger *logger.Logger
}

// NewAuthenticator creates an authenticator for the configured issuer and secret
func NewAuthenticator(cfg config.AuthConfig, log *logger.Logger) *Authenticator {
	return &Authenticator{cfg: cfg, logger: log}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// OptionalAuth attaches the caller identity when a token is presented.
// A presented but invalid token is rejected.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := auth.ParseToken(a.cfg, token)
		if err != nil {
			logger.FromContext(r.Context(), a.logger).Debugf("Rejected token: %v", err)
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAuth rejects anonymous callers; it must run after OptionalAuth
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers without the role; it must run after OptionalAuth
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if id.Role != role {
				response.Error(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CronToken guards scheduler endpoints with a shared secret in X-Cron-Token
func CronToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Cron-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				response.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
