// Package profile identifies the browser a request comes from.
//
// Every browser gets a random profile id in a long-lived cookie. All tabs of
// the browser send the same cookie, so they share one storage namespace.
package profile

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie holding the profile id.
const CookieName = "yg_profile"

const cookieMaxAge = 400 * 24 * time.Hour

// profileIDContextKey is the context key for the browser profile id.
type profileIDContextKey struct{}

// WithID stores a profile id in context.
func WithID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, profileIDContextKey{}, id)
}

// IDFromContext returns the profile id stored in context.
func IDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(profileIDContextKey{}).(string)
	return value
}

// Middleware reads the profile cookie, issuing a new id when it is missing or
// not a uuid, and stores the id in the request context.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(CookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cookieMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("issued browser profile", "profile", id)
			}
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
