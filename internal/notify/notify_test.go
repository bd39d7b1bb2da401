package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository/memory"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (r *recordingSender) Send(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingSender) userIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		ids = append(ids, n.UserID)
	}
	return ids
}

func newFixture(t *testing.T) (*memory.Store, *recordingSender, *Service, *domain.Issue, *domain.User, *domain.User) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	reporter := &domain.User{Email: "reporter@acme.test", Name: "Reporter", Role: domain.RoleUser, Active: true}
	require.NoError(t, store.Users().Create(ctx, reporter, "x"))
	assignee := &domain.User{Email: "dev@acme.test", Name: "Dev", Role: domain.RoleDeveloper, Active: true}
	require.NoError(t, store.Users().Create(ctx, assignee, "x"))

	issue := &domain.Issue{Title: "Broken export", ReportedByID: reporter.ID, AssignedToID: assignee.ID}
	require.NoError(t, store.Issues().Create(ctx, issue))

	sender := &recordingSender{}
	svc := NewService(store.Notifications(), zerolog.Nop(), sender)
	return store, sender, svc, issue, reporter, assignee
}

func listFor(t *testing.T, store *memory.Store, userID string) []domain.Notification {
	t.Helper()
	ns, err := store.Notifications().ListByUser(context.Background(), repository.NotificationFilter{UserID: userID})
	require.NoError(t, err)
	return ns
}

func TestStatusChangedNotifiesReporterAndAssignee(t *testing.T) {
	store, sender, svc, issue, reporter, assignee := newFixture(t)

	svc.IssueStatusChanged(context.Background(), issue, domain.StatusNew, domain.StatusInProgress, "someone-else")

	assert.ElementsMatch(t, []string{reporter.ID, assignee.ID}, sender.userIDs())

	got := listFor(t, store, reporter.ID)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationStatusChanged, got[0].Type)
	assert.Equal(t, issue.ID, got[0].IssueID)
	assert.Contains(t, got[0].Message, "Broken export")
	assert.Contains(t, got[0].Message, "NEW")
	assert.Contains(t, got[0].Message, "IN_PROGRESS")
	assert.False(t, got[0].Read)

	require.Len(t, listFor(t, store, assignee.ID), 1)
}

func TestStatusChangedSkipsActor(t *testing.T) {
	store, sender, svc, issue, reporter, assignee := newFixture(t)

	svc.IssueStatusChanged(context.Background(), issue, domain.StatusNew, domain.StatusClosed, assignee.ID)

	assert.Equal(t, []string{reporter.ID}, sender.userIDs())
	assert.Empty(t, listFor(t, store, assignee.ID))
}

func TestStatusChangedDeduplicatesSelfAssignedReporter(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := &domain.User{Email: "solo@acme.test", Name: "Solo", Role: domain.RoleDeveloper, Active: true}
	require.NoError(t, store.Users().Create(ctx, u, "x"))
	issue := &domain.Issue{Title: "Solo issue", ReportedByID: u.ID, AssignedToID: u.ID}
	require.NoError(t, store.Issues().Create(ctx, issue))

	sender := &recordingSender{}
	svc := NewService(store.Notifications(), zerolog.Nop(), sender)

	svc.IssueStatusChanged(ctx, issue, domain.StatusNew, domain.StatusInProgress, "other")

	assert.Equal(t, []string{u.ID}, sender.userIDs(), "reporter doubling as assignee gets one notification")
}

func TestStatusChangedWithoutAssignee(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	reporter := &domain.User{Email: "r@acme.test", Name: "R", Role: domain.RoleUser, Active: true}
	require.NoError(t, store.Users().Create(ctx, reporter, "x"))
	issue := &domain.Issue{Title: "Unassigned", ReportedByID: reporter.ID}
	require.NoError(t, store.Issues().Create(ctx, issue))

	sender := &recordingSender{}
	svc := NewService(store.Notifications(), zerolog.Nop(), sender)

	svc.IssueStatusChanged(ctx, issue, domain.StatusNew, domain.StatusClosed, "other")

	assert.Equal(t, []string{reporter.ID}, sender.userIDs())
}

func TestIssueAssigned(t *testing.T) {
	store, sender, svc, issue, _, assignee := newFixture(t)

	svc.IssueAssigned(context.Background(), issue, "manager-id")

	require.Equal(t, []string{assignee.ID}, sender.userIDs())
	got := listFor(t, store, assignee.ID)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationAssigned, got[0].Type)
	assert.Contains(t, got[0].Message, "assigned to you")
}

func TestIssueAssignedSkipsSelfAssignment(t *testing.T) {
	_, sender, svc, issue, _, assignee := newFixture(t)

	svc.IssueAssigned(context.Background(), issue, assignee.ID)

	assert.Empty(t, sender.userIDs())
}

func TestIssueAssignedNoAssignee(t *testing.T) {
	_, sender, svc, issue, _, _ := newFixture(t)
	issue.AssignedToID = ""

	svc.IssueAssigned(context.Background(), issue, "manager-id")

	assert.Empty(t, sender.userIDs())
}

func TestCommentAddedSkipsAuthor(t *testing.T) {
	store, sender, svc, issue, reporter, assignee := newFixture(t)

	svc.CommentAdded(context.Background(), issue, &domain.Comment{IssueID: issue.ID, CreatedByID: reporter.ID, Body: "ping"})

	assert.Equal(t, []string{assignee.ID}, sender.userIDs())
	got := listFor(t, store, assignee.ID)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationCommented, got[0].Type)
	assert.Empty(t, listFor(t, store, reporter.ID))
}

func TestDeliveryErrorsAreSwallowed(t *testing.T) {
	store, sender, svc, issue, reporter, assignee := newFixture(t)
	sender.err = errors.New("smtp down")

	svc.IssueStatusChanged(context.Background(), issue, domain.StatusNew, domain.StatusClosed, "other")

	// Rows still land even though every send failed.
	assert.Len(t, listFor(t, store, reporter.ID), 1)
	assert.Len(t, listFor(t, store, assignee.ID), 1)
}

func TestStoreErrorsAreSwallowed(t *testing.T) {
	_, sender, svc, issue, _, _ := newFixture(t)
	issue.ReportedByID = "no-such-user"
	issue.AssignedToID = ""

	// Persisting fails for an unknown user; delivery still goes out.
	svc.IssueStatusChanged(context.Background(), issue, domain.StatusNew, domain.StatusClosed, "other")

	assert.Equal(t, []string{"no-such-user"}, sender.userIDs())
}
