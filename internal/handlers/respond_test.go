package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/service"
	"github.com/thehashrocket/issue-portal-sub000/internal/storage"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no session", authz.ErrUnauthenticated, 401, "UNAUTHENTICATED"},
		{"denied", &authz.ForbiddenError{Resource: authz.ResourceIssue, Action: authz.ActionDelete}, 403, "FORBIDDEN"},
		{"issue missing", domain.ErrIssueNotFound, 404, "NOT_FOUND"},
		{"client missing", domain.ErrClientNotFound, 404, "NOT_FOUND"},
		{"user missing", domain.ErrUserNotFound, 404, "NOT_FOUND"},
		{"comment missing", domain.ErrCommentNotFound, 404, "NOT_FOUND"},
		{"file missing", domain.ErrFileNotFound, 404, "NOT_FOUND"},
		{"notification missing", domain.ErrNotificationNotFound, 404, "NOT_FOUND"},
		{"blob missing", storage.ErrBlobNotFound, 404, "NOT_FOUND"},
		{"email collision", domain.ErrEmailTaken, 409, "EMAIL_TAKEN"},
		{"lost status race", domain.ErrStatusConflict, 409, "STATUS_CONFLICT"},
		{"user still referenced", domain.ErrUserReferenced, 409, "USER_REFERENCED"},
		{"illegal move", &domain.InvalidTransitionError{From: domain.StatusClosed, To: domain.StatusFixed}, 400, "INVALID_TRANSITION"},
		{"bad status", &domain.InvalidStatusError{Raw: "DONE"}, 400, "VALIDATION"},
		{"bad role", &domain.InvalidRoleError{Raw: "WIZARD"}, 400, "VALIDATION"},
		{"bad priority", &domain.InvalidPriorityError{Raw: "URGENT"}, 400, "VALIDATION"},
		{"bad input", fmt.Errorf("%w: email is required", service.ErrInvalidInput), 400, "VALIDATION"},
		{"short password", utils.ErrPasswordTooShort, 400, "VALIDATION"},
		{"bad credentials", service.ErrInvalidCredentials, 401, "INVALID_CREDENTIALS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, zerolog.Nop(), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

// Wrapping must not defeat the mapping; repositories wrap sentinels with
// context all the time.
func TestWriteErrorUnwraps(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zerolog.Nop(), fmt.Errorf("get issue abc: %w", domain.ErrIssueNotFound))
	assert.Equal(t, 404, rec.Code)
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zerolog.Nop(), fmt.Errorf("pq: connection refused to 10.0.0.7"))

	assert.Equal(t, 500, rec.Code)
	raw := rec.Body.String()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, "internal error", body.Error.Message)
	assert.NotContains(t, raw, "10.0.0.7")
}
