package repository

import (
	"context"
	"time"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
)

// IssueRepository persists issues and their comments. Lookups return
// domain.ErrIssueNotFound (or ErrCommentNotFound) when the row is missing.
type IssueRepository interface {
	List(ctx context.Context, f IssueFilter) ([]domain.Issue, int, error)
	Get(ctx context.Context, id string) (*domain.Issue, error)
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	// UpdateStatus performs a compare-and-swap: the row is only written
	// when its status still equals from. A lost race against a concurrent
	// writer surfaces as domain.ErrStatusConflict.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) error
	Delete(ctx context.Context, id string) error

	AddComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, issueID string) ([]domain.Comment, error)
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	CountResolvedSince(ctx context.Context, since time.Time) (int, error)
	CountOpenByPriorities(ctx context.Context, priorities []domain.Priority) (int, error)
}

type ClientRepository interface {
	List(ctx context.Context, f ClientFilter) ([]domain.Client, int, error)
	Get(ctx context.Context, id string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists accounts. Create and Update return
// domain.ErrEmailTaken on an email collision.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, f UserFilter) ([]domain.User, int, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// FileRepository persists attachment metadata; the bytes live in a blob
// store keyed by domain.File.Key.
type FileRepository interface {
	Create(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, id string) (*domain.File, error)
	ListByIssue(ctx context.Context, issueID string) ([]domain.File, error)
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, f NotificationFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
