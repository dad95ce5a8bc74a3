package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/config"
)

type guestKey struct{}

// WithGuestSession stores the guest session id on the context
func WithGuestSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, guestKey{}, sessionID)
}

// GuestSessionFrom returns the guest session id, if any
func GuestSessionFrom(ctx context.Context) string {
	s, _ := ctx.Value(guestKey{}).(string)
	return s
}

// GuestSession ensures every caller carries a guest session cookie.
// Malformed cookie values are replaced.
func GuestSession(cfg config.AuthConfig) func(http.Handler) http.Handler {
	name := guestCookieName(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if c, err := r.Cookie(name); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					sessionID = c.Value
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.GuestCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.SecureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithGuestSession(r.Context(), sessionID)))
		})
	}
}

func guestCookieName(cfg config.AuthConfig) string {
	if cfg.GuestCookieName == "" {
		return "guest_session"
	}
	return cfg.GuestCookieName
}

// ExpireGuestSession tells the client to drop its guest session cookie
func ExpireGuestSession(w http.ResponseWriter, cfg config.AuthConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     guestCookieName(cfg),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
