package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIssueNotFound        = errors.New("issue not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrEmailTaken is returned when a user create/update collides with
	// an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserReferenced is returned when deleting a user that still owns
	// issues, comments or files.
	ErrUserReferenced = errors.New("user still referenced by tracker records")

	// ErrStatusConflict is returned when a status update loses the
	// compare-and-swap against a concurrent writer: the issue exists but
	// its status no longer matches the value the transition was
	// validated against.
	ErrStatusConflict = errors.New("issue status changed concurrently")
)

// InvalidStatusError reports a status string outside the workflow.
type InvalidStatusError struct {
	Raw string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Raw)
}

// InvalidTransitionError reports a status change that is not an edge of
// the workflow graph. It is a client-input condition, distinct from an
// authorization denial.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// InvalidRoleError reports a role string outside the closed enumeration.
type InvalidRoleError struct {
	Raw string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid role %q", e.Raw)
}

// InvalidPriorityError reports a priority string outside the closed
// enumeration.
type InvalidPriorityError struct {
	Raw string
}

func (e *InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid priority %q", e.Raw)
}
