package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

type IssueRepo struct{ db *pgxpool.Pool }

func NewIssueRepo(db *pgxpool.Pool) *IssueRepo { return &IssueRepo{db: db} }

const issueColumns = `
	i.id, i.title, i.description, i.status, i.priority,
	COALESCE(i.client_id::text, ''), i.reported_by, COALESCE(i.assigned_to::text, ''),
	i.created_at, i.updated_at,
	COALESCE(ru.name, ''), COALESCE(au.name, '')`

func scanIssue(row pgx.Row, is *domain.Issue) error {
	return row.Scan(
		&is.ID, &is.Title, &is.Description, &is.Status, &is.Priority,
		&is.ClientID, &is.ReportedByID, &is.AssignedToID,
		&is.CreatedAt, &is.UpdatedAt,
		&is.ReporterName, &is.AssigneeName,
	)
}

// List returns a page of issues plus the total count for the same filter
// set. Free-text search matches title or description case-insensitively.
func (r *IssueRepo) List(ctx context.Context, f repository.IssueFilter) ([]domain.Issue, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	whereSQL, args := buildIssueWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM issues i `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol := sanitizeSort(f.Sort, "updated_at")
	sortOrd := sanitizeOrder(f.Order, "desc")

	sql := fmt.Sprintf(`
		SELECT %s
		FROM issues i
		LEFT JOIN users ru ON ru.id = i.reported_by
		LEFT JOIN users au ON au.id = i.assigned_to
		%s
		ORDER BY i.%s %s
		LIMIT $%d OFFSET $%d
	`, issueColumns, whereSQL, sortCol, sortOrd, len(args)+1, len(args)+2)

	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Issue
	for rows.Next() {
		var is domain.Issue
		if err := scanIssue(rows, &is); err != nil {
			return nil, 0, err
		}
		out = append(out, is)
	}
	return out, total, rows.Err()
}

// Get loads a single issue with its comments.
func (r *IssueRepo) Get(ctx context.Context, id string) (*domain.Issue, error) {
	var is domain.Issue
	err := scanIssue(r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM issues i
		LEFT JOIN users ru ON ru.id = i.reported_by
		LEFT JOIN users au ON au.id = i.assigned_to
		WHERE i.id = $1
	`, issueColumns), id), &is)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, err
	}

	is.Comments, err = r.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &is, nil
}

func (r *IssueRepo) Create(ctx context.Context, issue *domain.Issue) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO issues (title, description, status, priority, client_id, reported_by, assigned_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, status, priority, created_at, updated_at
	`,
		issue.Title, issue.Description, domain.StatusNew, issue.Priority,
		nullIfEmpty(issue.ClientID), issue.ReportedByID, nullIfEmpty(issue.AssignedToID),
	).Scan(&issue.ID, &issue.Status, &issue.Priority, &issue.CreatedAt, &issue.UpdatedAt)
	return translatePgError(err)
}

// Update writes the editable fields. Status is deliberately absent; it only
// moves through UpdateStatus so the workflow check cannot be bypassed.
func (r *IssueRepo) Update(ctx context.Context, issue *domain.Issue) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE issues SET
			title=$1, description=$2, priority=$3, client_id=$4, assigned_to=$5, updated_at=now()
		WHERE id=$6
	`,
		issue.Title, issue.Description, issue.Priority,
		nullIfEmpty(issue.ClientID), nullIfEmpty(issue.AssignedToID), issue.ID,
	)
	if err != nil {
		return translatePgError(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// UpdateStatus writes the new status only if the row still carries the
// status the transition was validated against. When the guard fails we
// look the row up again to distinguish a missing issue from a lost race.
func (r *IssueRepo) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE issues SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3
	`, to, id, from)
	if err != nil {
		return err
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = r.db.QueryRow(ctx, `SELECT status FROM issues WHERE id=$1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrIssueNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrStatusConflict
}

func (r *IssueRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

func (r *IssueRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO comments (issue_id, created_by, body)
		VALUES ($1,$2,$3)
		RETURNING id, created_at
	`, c.IssueID, c.CreatedByID, c.Body).Scan(&c.ID, &c.CreatedAt)
	return translatePgError(err)
}

func (r *IssueRepo) ListComments(ctx context.Context, issueID string) ([]domain.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.issue_id, c.created_by, c.body, c.created_at, COALESCE(u.name, '')
		FROM comments c
		LEFT JOIN users u ON u.id = c.created_by
		WHERE c.issue_id = $1
		ORDER BY c.created_at ASC
	`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.IssueID, &c.CreatedByID, &c.Body, &c.CreatedAt, &c.AuthorName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *IssueRepo) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.QueryRow(ctx, `
		SELECT c.id, c.issue_id, c.created_by, c.body, c.created_at, COALESCE(u.name, '')
		FROM comments c
		LEFT JOIN users u ON u.id = c.created_by
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.IssueID, &c.CreatedByID, &c.Body, &c.CreatedAt, &c.AuthorName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *IssueRepo) DeleteComment(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reporting counters, used by /api/reports/summary
// -----------------------------------------------------------------------------

func (r *IssueRepo) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM issues GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Status]int, 8)
	for rows.Next() {
		var s domain.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *IssueRepo) CountResolvedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM issues
		WHERE status IN ('FIXED','CLOSED','WONT_FIX') AND updated_at >= $1
	`, since).Scan(&n)
	return n, err
}

func (r *IssueRepo) CountOpenByPriorities(ctx context.Context, priorities []domain.Priority) (int, error) {
	ps := make([]string, len(priorities))
	for i, p := range priorities {
		ps[i] = string(p)
	}

	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM issues
		WHERE status NOT IN ('FIXED','CLOSED','WONT_FIX') AND priority = ANY($1)
	`, ps).Scan(&n)
	return n, err
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func buildIssueWhere(f repository.IssueFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(i.title ILIKE $"+itoa(len(args)-1)+" OR i.description ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "i.status = $"+itoa(len(args)))
	}
	if s := strings.TrimSpace(f.Priority); s != "" {
		args = append(args, s)
		clauses = append(clauses, "i.priority = $"+itoa(len(args)))
	}
	if s := strings.TrimSpace(f.ClientID); s != "" {
		args = append(args, s)
		clauses = append(clauses, "i.client_id = $"+itoa(len(args)))
	}
	if s := strings.TrimSpace(f.AssigneeID); s != "" {
		args = append(args, s)
		clauses = append(clauses, "i.assigned_to = $"+itoa(len(args)))
	}
	if s := strings.TrimSpace(f.ReporterID); s != "" {
		args = append(args, s)
		clauses = append(clauses, "i.reported_by = $"+itoa(len(args)))
	}
	if s := strings.TrimSpace(f.InvolvedUserID); s != "" {
		args = append(args, s)
		n := itoa(len(args))
		clauses = append(clauses, "(i.reported_by = $"+n+" OR i.assigned_to = $"+n+")")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func sanitizeSort(s, def string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created_at", "updated_at", "priority":
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return def
	}
}

func sanitizeOrder(o, def string) string {
	switch strings.ToLower(strings.TrimSpace(o)) {
	case "asc", "desc":
		return strings.ToLower(strings.TrimSpace(o))
	default:
		return def
	}
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// translatePgError maps constraint violations onto domain errors so
// handlers never see raw postgres codes.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_key" {
		return domain.ErrEmailTaken
	}
	if pgErr.Code == "23503" {
		switch pgErr.ConstraintName {
		case "issues_client_id_fkey", "users_client_id_fkey":
			return domain.ErrClientNotFound
		case "issues_reported_by_fkey", "issues_assigned_to_fkey",
			"comments_created_by_fkey", "files_uploaded_by_fkey", "notifications_user_id_fkey":
			return domain.ErrUserNotFound
		case "comments_issue_id_fkey", "files_issue_id_fkey", "notifications_issue_id_fkey":
			return domain.ErrIssueNotFound
		}
	}
	return err
}

// small helper to avoid fmt on the query-building path.
func itoa(i int) string { return strconv.Itoa(i) }
