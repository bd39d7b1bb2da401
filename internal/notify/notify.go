// Package notify produces in-app notifications and fans them out to
// delivery senders. Notification failures are logged and swallowed; they
// never fail the request that triggered them.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

// Sender pushes a notification to an external channel (mail, chat, push).
// Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

// NopSender drops everything. Used when no delivery channel is configured.
type NopSender struct{}

func (NopSender) Send(context.Context, domain.Notification) error { return nil }

// LogSender writes deliveries to the log. The default in dev.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.log.Info().
		Str("user_id", n.UserID).
		Str("issue_id", n.IssueID).
		Str("type", string(n.Type)).
		Str("message", n.Message).
		Msg("notification")
	return nil
}

// Service stores notification rows and fans out to senders.
type Service struct {
	repo    repository.NotificationRepository
	senders []Sender
	log     zerolog.Logger
}

func NewService(repo repository.NotificationRepository, log zerolog.Logger, senders ...Sender) *Service {
	return &Service{repo: repo, senders: senders, log: log}
}

// notify persists one row and pushes it to every sender. Each step fails
// independently and only into the log.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	if err := s.repo.Create(ctx, &n); err != nil {
		s.log.Error().Err(err).
			Str("user_id", n.UserID).
			Str("type", string(n.Type)).
			Msg("store notification failed")
	}
	for _, sender := range s.senders {
		if err := sender.Send(ctx, n); err != nil {
			s.log.Error().Err(err).
				Str("user_id", n.UserID).
				Str("type", string(n.Type)).
				Msg("send notification failed")
		}
	}
}

// recipients picks the reporter and assignee, minus the acting user and
// duplicates.
func recipients(issue *domain.Issue, actorID string) []string {
	var out []string
	seen := map[string]struct{}{actorID: {}, "": {}}
	for _, id := range []string{issue.ReportedByID, issue.AssignedToID} {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IssueStatusChanged tells the reporter and assignee about a workflow
// move, skipping whoever made it.
func (s *Service) IssueStatusChanged(ctx context.Context, issue *domain.Issue, from, to domain.Status, actorID string) {
	msg := fmt.Sprintf("issue %q moved from %s to %s", issue.Title, from, to)
	for _, uid := range recipients(issue, actorID) {
		s.notify(ctx, domain.Notification{
			UserID:  uid,
			IssueID: issue.ID,
			Type:    domain.NotificationStatusChanged,
			Message: msg,
		})
	}
}

// IssueAssigned tells the new assignee, unless they assigned themselves.
func (s *Service) IssueAssigned(ctx context.Context, issue *domain.Issue, actorID string) {
	if issue.AssignedToID == "" || issue.AssignedToID == actorID {
		return
	}
	s.notify(ctx, domain.Notification{
		UserID:  issue.AssignedToID,
		IssueID: issue.ID,
		Type:    domain.NotificationAssigned,
		Message: fmt.Sprintf("issue %q was assigned to you", issue.Title),
	})
}

// CommentAdded tells the reporter and assignee, skipping the author.
func (s *Service) CommentAdded(ctx context.Context, issue *domain.Issue, c *domain.Comment) {
	msg := fmt.Sprintf("new comment on issue %q", issue.Title)
	for _, uid := range recipients(issue, c.CreatedByID) {
		s.notify(ctx, domain.Notification{
			UserID:  uid,
			IssueID: issue.ID,
			Type:    domain.NotificationCommented,
			Message: msg,
		})
	}
}
