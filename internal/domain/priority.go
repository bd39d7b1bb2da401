package domain

import "strings"

// Priority ranks how urgently an issue needs attention.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var validPriorities = map[Priority]struct{}{
	PriorityLow:      {},
	PriorityMedium:   {},
	PriorityHigh:     {},
	PriorityCritical: {},
}

// ParsePriority normalises and validates an incoming priority string.
// A blank string falls back to MEDIUM.
func ParsePriority(raw string) (Priority, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return PriorityMedium, nil
	}
	priority := Priority(trimmed)
	if _, ok := validPriorities[priority]; !ok {
		return "", &InvalidPriorityError{Raw: raw}
	}
	return priority, nil
}

// Valid reports whether the priority is one of the four known values.
func (p Priority) Valid() bool {
	_, ok := validPriorities[p]
	return ok
}
