package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/config"
	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

type ctxKey struct{}

var sessionKey ctxKey

// SessionCookie carries the signed session token.
const SessionCookie = "session"

// SessionFrom returns the authenticated session, or nil for anonymous
// requests.
func SessionFrom(ctx context.Context) *authz.Session {
	s, _ := ctx.Value(sessionKey).(*authz.Session)
	return s
}

// WithSession attaches a session to the context.
func WithSession(ctx context.Context, s *authz.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// WithAuth resolves the session token into an authz.Session. Requests
// without a usable token pass through anonymous; handlers and the
// authorization gate decide what that means.
func WithAuth(log zerolog.Logger, cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Token comes from the cookie or Authorization: Bearer.
			var tok string
			if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := utils.ParseJWT(cfg.SessionSecret, tok)
			if err != nil {
				// Clear broken/expired cookies so they stop being sent.
				clearSessionCookie(w)
				log.Debug().Err(err).Msg("session token rejected")
				next.ServeHTTP(w, r)
				return
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil {
				clearSessionCookie(w)
				log.Debug().Str("role", claims.Role).Msg("session token carries unknown role")
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithSession(r.Context(), &authz.Session{UserID: claims.UserID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
