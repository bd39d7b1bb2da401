package handlers

import (
	"context"
	"net/http"

	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// Health reports process liveness.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Pinger is satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports dependency readiness. With in-memory storage there is no
// database, so a nil pinger is always ready.
func Ready(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				utils.Error(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
				return
			}
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
