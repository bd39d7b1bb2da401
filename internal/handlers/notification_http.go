package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/middleware"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// NotificationHTTP serves each user's own inbox. Nobody reads or edits
// another user's notifications, admins included.
type NotificationHTTP struct {
	notifications repository.NotificationRepository
	az            *authz.Authorizer
	log           zerolog.Logger
}

func NewNotificationHTTP(notifications repository.NotificationRepository, az *authz.Authorizer, log zerolog.Logger) *NotificationHTTP {
	return &NotificationHTTP{notifications: notifications, az: az, log: log}
}

// GET /api/notifications?unread=&limit=&offset=
func (h *NotificationHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		if sess == nil {
			writeError(w, h.log, authz.ErrUnauthenticated)
			return
		}
		qv := r.URL.Query()
		f := repository.NotificationFilter{
			UserID:     sess.UserID,
			UnreadOnly: utils.QueryBool(qv, "unread", false),
			Limit:      utils.QueryInt(qv, "limit", 20),
			Offset:     utils.QueryInt(qv, "offset", 0),
		}
		items, err := h.notifications.ListByUser(r.Context(), f)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// PATCH /api/notifications/{id}/read
func (h *NotificationHTTP) MarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrNotificationNotFound)
			return
		}
		n, err := h.notifications.Get(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		err = h.az.Check(middleware.SessionFrom(r.Context()), authz.ResourceNotification, authz.ActionUpdate, authz.ResourceData{OwnerID: n.UserID})
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.notifications.MarkRead(r.Context(), id); err != nil {
			writeError(w, h.log, err)
			return
		}
		n.Read = true
		utils.JSON(w, http.StatusOK, n)
	}
}

// POST /api/notifications/read-all
func (h *NotificationHTTP) MarkAllRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		if sess == nil {
			writeError(w, h.log, authz.ErrUnauthenticated)
			return
		}
		if err := h.notifications.MarkAllRead(r.Context(), sess.UserID); err != nil {
			writeError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
