package domain

import "strings"

// Status represents the lifecycle state of an issue.
type Status string

const (
	StatusNew         Status = "NEW"
	StatusAssigned    Status = "ASSIGNED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusPending     Status = "PENDING"
	StatusNeedsReview Status = "NEEDS_REVIEW"
	StatusFixed       Status = "FIXED"
	StatusClosed      Status = "CLOSED"
	StatusWontFix     Status = "WONT_FIX"
)

var validStatuses = map[Status]struct{}{
	StatusNew:         {},
	StatusAssigned:    {},
	StatusInProgress:  {},
	StatusPending:     {},
	StatusNeedsReview: {},
	StatusFixed:       {},
	StatusClosed:      {},
	StatusWontFix:     {},
}

// allowedTransitions is the directed edge set of the issue workflow.
// Every status has an entry; CLOSED and WONT_FIX only reopen to
// IN_PROGRESS, so no state is absorbing.
var allowedTransitions = map[Status]map[Status]struct{}{
	StatusNew: {
		StatusAssigned:   {},
		StatusInProgress: {},
		StatusClosed:     {},
		StatusWontFix:    {},
	},
	StatusAssigned: {
		StatusInProgress: {},
		StatusPending:    {},
		StatusClosed:     {},
		StatusWontFix:    {},
	},
	StatusInProgress: {
		StatusPending:     {},
		StatusNeedsReview: {},
		StatusFixed:       {},
		StatusClosed:      {},
		StatusWontFix:     {},
	},
	StatusPending: {
		StatusInProgress:  {},
		StatusNeedsReview: {},
		StatusFixed:       {},
		StatusClosed:      {},
		StatusWontFix:     {},
	},
	StatusNeedsReview: {
		StatusInProgress: {},
		StatusFixed:      {},
		StatusClosed:     {},
		StatusWontFix:    {},
	},
	StatusFixed: {
		StatusNeedsReview: {},
		StatusClosed:      {},
		StatusInProgress:  {},
	},
	StatusClosed: {
		StatusInProgress: {},
	},
	StatusWontFix: {
		StatusInProgress: {},
	},
}

// ParseStatus normalises and validates an incoming status string.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := validStatuses[status]; !ok {
		return "", &InvalidStatusError{Raw: raw}
	}
	return status, nil
}

// Valid reports whether the status is one of the eight known values.
func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// IsResolved reports whether the status counts as closed out for
// reporting purposes.
func (s Status) IsResolved() bool {
	return s == StatusFixed || s == StatusClosed || s == StatusWontFix
}

// CanTransitionTo reports whether the workflow permits moving to target.
// A self-transition is always permitted.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	edges, ok := allowedTransitions[s]
	if !ok {
		return false
	}
	_, ok = edges[target]
	return ok
}

// ValidateTransition returns an InvalidTransitionError when the move
// from s to target is not on the workflow graph.
func (s Status) ValidateTransition(target Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if !s.CanTransitionTo(target) {
		return &InvalidTransitionError{From: s, To: target}
	}
	return nil
}

// Validate ensures the status is part of the supported workflow.
func (s Status) Validate() error {
	if !s.Valid() {
		return &InvalidStatusError{Raw: string(s)}
	}
	return nil
}

// AllowedTransitions returns the statuses reachable from s, for UI
// population. The returned slice is a copy; the table is never mutated.
func (s Status) AllowedTransitions() []Status {
	edges, ok := allowedTransitions[s]
	if !ok {
		return nil
	}
	out := make([]Status, 0, len(edges))
	for _, t := range Statuses() {
		if _, ok := edges[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Statuses returns all valid statuses in workflow order.
func Statuses() []Status {
	return []Status{
		StatusNew,
		StatusAssigned,
		StatusInProgress,
		StatusPending,
		StatusNeedsReview,
		StatusFixed,
		StatusClosed,
		StatusWontFix,
	}
}
