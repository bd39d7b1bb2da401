package authz

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a check runs without a session.
var ErrUnauthenticated = errors.New("authentication required")

// ForbiddenError reports a denied action so callers can tell the user
// exactly what was refused.
type ForbiddenError struct {
	Resource Resource
	Action   Action
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("not allowed to %s %s", e.Action, e.Resource)
}
