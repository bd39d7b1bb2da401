package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"NEW", StatusNew},
		{"in_progress", StatusInProgress},
		{" needs_review ", StatusNeedsReview},
		{"Wont_Fix", StatusWontFix},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.raw)
		require.NoError(t, err, "raw %q", tc.raw)
		assert.Equal(t, tc.want, got)
	}

	for _, raw := range []string{"", "DONE", "REOPENED", "new status"} {
		_, err := ParseStatus(raw)
		require.Error(t, err, "raw %q", raw)

		var ise *InvalidStatusError
		assert.True(t, errors.As(err, &ise))
	}
}

func TestStatusSelfTransitionAlwaysAllowed(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.CanTransitionTo(s), "%s -> %s", s, s)
		assert.NoError(t, s.ValidateTransition(s))
	}
}

func TestStatusTransitionTable(t *testing.T) {
	// The full workflow graph, including the reopen-only edges out of the
	// terminal statuses.
	want := map[Status][]Status{
		StatusNew:         {StatusAssigned, StatusInProgress, StatusClosed, StatusWontFix},
		StatusAssigned:    {StatusInProgress, StatusPending, StatusClosed, StatusWontFix},
		StatusInProgress:  {StatusPending, StatusNeedsReview, StatusFixed, StatusClosed, StatusWontFix},
		StatusPending:     {StatusInProgress, StatusNeedsReview, StatusFixed, StatusClosed, StatusWontFix},
		StatusNeedsReview: {StatusInProgress, StatusFixed, StatusClosed, StatusWontFix},
		StatusFixed:       {StatusInProgress, StatusNeedsReview, StatusClosed},
		StatusClosed:      {StatusInProgress},
		StatusWontFix:     {StatusInProgress},
	}

	for _, from := range Statuses() {
		allowed := make(map[Status]bool, len(want[from]))
		for _, to := range want[from] {
			allowed[to] = true
		}
		for _, to := range Statuses() {
			if from == to {
				continue
			}
			assert.Equal(t, allowed[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
		assert.ElementsMatch(t, want[from], from.AllowedTransitions(), "reachable from %s", from)
	}
}

func TestStatusTransitionRejections(t *testing.T) {
	cases := []struct {
		from, to Status
	}{
		{StatusInProgress, StatusNew},
		{StatusClosed, StatusFixed},
		{StatusWontFix, StatusClosed},
		{StatusFixed, StatusPending},
		{StatusAssigned, StatusNeedsReview},
		{StatusNeedsReview, StatusNew},
	}
	for _, tc := range cases {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)

		err := tc.from.ValidateTransition(tc.to)
		require.Error(t, err)

		var ite *InvalidTransitionError
		require.True(t, errors.As(err, &ite))
		assert.Equal(t, tc.from, ite.From)
		assert.Equal(t, tc.to, ite.To)
	}
}

func TestValidateTransitionRejectsUnknownStatuses(t *testing.T) {
	var ise *InvalidStatusError

	err := Status("BOGUS").ValidateTransition(StatusClosed)
	require.Error(t, err)
	assert.True(t, errors.As(err, &ise))

	err = StatusNew.ValidateTransition(Status("BOGUS"))
	require.Error(t, err)
	assert.True(t, errors.As(err, &ise))

	// Unknown statuses never sneak through the boolean check either.
	assert.False(t, Status("BOGUS").CanTransitionTo(Status("BOGUS2")))
}

func TestStatusTableIsTotal(t *testing.T) {
	require.Len(t, Statuses(), 8)
	for _, s := range Statuses() {
		targets := s.AllowedTransitions()
		require.NotEmpty(t, targets, "%s must have at least one outgoing edge", s)
		for _, to := range targets {
			assert.True(t, to.Valid(), "%s -> %s targets an unknown status", s, to)
		}
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	first := StatusNew.AllowedTransitions()
	first[0] = StatusWontFix
	second := StatusNew.AllowedTransitions()
	assert.Equal(t, StatusAssigned, second[0])
}

func TestStatusIsResolved(t *testing.T) {
	resolved := map[Status]bool{
		StatusFixed:   true,
		StatusClosed:  true,
		StatusWontFix: true,
	}
	for _, s := range Statuses() {
		assert.Equal(t, resolved[s], s.IsResolved(), "status %s", s)
	}
}
