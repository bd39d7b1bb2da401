package authz

import "github.com/thehashrocket/issue-portal-sub000/internal/domain"

// Session identifies the authenticated caller for an authorization check.
// Handlers build it from the verified JWT claims; a nil *Session means the
// request carried no valid credentials.
type Session struct {
	UserID string
	Role   domain.Role
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == domain.RoleAdmin
}

func (s *Session) IsAccountManager() bool {
	return s != nil && s.Role == domain.RoleAccountManager
}

func (s *Session) IsDeveloper() bool {
	return s != nil && s.Role == domain.RoleDeveloper
}

// HasRole reports whether the session holds any of the given roles.
func (s *Session) HasRole(roles ...domain.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// IsOwner reports whether the session user owns the resource. An empty
// owner ID never matches.
func (s *Session) IsOwner(ownerID string) bool {
	return s != nil && ownerID != "" && s.UserID == ownerID
}

// IsAssigned reports whether the session user is the resource's assignee.
func (s *Session) IsAssigned(assigneeID string) bool {
	return s != nil && assigneeID != "" && s.UserID == assigneeID
}
