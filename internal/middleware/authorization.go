package middleware

import (
	"errors"
	"net/http"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// RequireAuth blocks anonymous requests before they reach a handler.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFrom(r.Context()) == nil {
			utils.Error(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authorize enforces a rule that needs no per-record data, so whole route
// groups can be gated in the router. Handlers that must inspect the record
// first (ownership, assignment) call the authorizer themselves.
func Authorize(az *authz.Authorizer, res authz.Resource, act authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := az.Check(SessionFrom(r.Context()), res, act, authz.ResourceData{})
			if err != nil {
				if errors.Is(err, authz.ErrUnauthenticated) {
					utils.Error(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
					return
				}
				utils.Error(w, http.StatusForbidden, "FORBIDDEN", err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
