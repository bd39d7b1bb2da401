package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/service"
	"github.com/thehashrocket/issue-portal-sub000/internal/storage"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// writeError maps domain and authorization failures onto the error
// envelope. Anything unrecognized is logged and reported as a plain 500
// so internals never leak to clients.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		forbidden   *authz.ForbiddenError
		badStatus   *domain.InvalidStatusError
		badRole     *domain.InvalidRoleError
		badPriority *domain.InvalidPriorityError
		badMove     *domain.InvalidTransitionError
	)
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		utils.Error(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	case errors.As(err, &forbidden):
		utils.Error(w, http.StatusForbidden, "FORBIDDEN", forbidden.Error())
	case errors.Is(err, domain.ErrIssueNotFound),
		errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrFileNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, storage.ErrBlobNotFound):
		utils.Error(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		utils.Error(w, http.StatusConflict, "EMAIL_TAKEN", err.Error())
	case errors.Is(err, domain.ErrStatusConflict):
		utils.Error(w, http.StatusConflict, "STATUS_CONFLICT", err.Error())
	case errors.Is(err, domain.ErrUserReferenced):
		utils.Error(w, http.StatusConflict, "USER_REFERENCED", err.Error())
	case errors.As(err, &badMove):
		utils.Error(w, http.StatusBadRequest, "INVALID_TRANSITION", badMove.Error())
	case errors.As(err, &badStatus),
		errors.As(err, &badRole),
		errors.As(err, &badPriority),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, utils.ErrPasswordTooShort):
		utils.Error(w, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
