// Package authz is the single authorization gate for the API. Every
// handler asks it before touching a resource. Decisions are fail closed:
// no session, an unknown resource/action pair, or a rule returning false
// all deny.
package authz

import "github.com/rs/zerolog"

// IsAuthorized evaluates the rule table for the given session and resource
// data. It never panics; anything it does not recognize is a denial.
func IsAuthorized(s *Session, res Resource, act Action, rd ResourceData) bool {
	if s == nil || s.UserID == "" {
		return false
	}
	rule, ok := rules[ruleKey{Resource: res, Action: act}]
	if !ok {
		return false
	}
	return rule(s, rd)
}

// Authorizer wraps the rule table with decision logging.
type Authorizer struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Authorizer {
	return &Authorizer{log: log}
}

// Check returns nil when the session may perform the action,
// ErrUnauthenticated when there is no session, and a *ForbiddenError
// otherwise. Denials are logged with the full decision context.
func (a *Authorizer) Check(s *Session, res Resource, act Action, rd ResourceData) error {
	if s == nil || s.UserID == "" {
		a.log.Debug().
			Str("resource", string(res)).
			Str("action", string(act)).
			Msg("authorization denied: no session")
		return ErrUnauthenticated
	}

	if !IsAuthorized(s, res, act, rd) {
		a.log.Debug().
			Str("user_id", s.UserID).
			Str("role", string(s.Role)).
			Str("resource", string(res)).
			Str("action", string(act)).
			Str("owner_id", rd.OwnerID).
			Str("assignee_id", rd.AssigneeID).
			Msg("authorization denied")
		return &ForbiddenError{Resource: res, Action: act}
	}

	return nil
}
