package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

type NotificationRepo struct{ db *pgxpool.Pool }

func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, issue_id, type, message, is_read)
		VALUES ($1,$2,$3,$4,false)
		RETURNING id, created_at
	`, n.UserID, nullIfEmpty(n.IssueID), n.Type, n.Message).
		Scan(&n.ID, &n.CreatedAt)
	return translatePgError(err)
}

func (r *NotificationRepo) Get(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, COALESCE(issue_id::text, ''), type, message, is_read, created_at
		FROM notifications WHERE id=$1
	`, id).Scan(&n.ID, &n.UserID, &n.IssueID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, f repository.NotificationFilter) ([]domain.Notification, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	sql := `
		SELECT id, user_id, COALESCE(issue_id::text, ''), type, message, is_read, created_at
		FROM notifications
		WHERE user_id=$1`
	if f.UnreadOnly {
		sql += ` AND is_read=false`
	}
	sql += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, sql, f.UserID, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.IssueID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read=true WHERE id=$1
	`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read=true WHERE user_id=$1 AND is_read=false
	`, userID)
	return err
}
