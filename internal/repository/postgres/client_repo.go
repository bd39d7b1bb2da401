package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

type ClientRepo struct{ db *pgxpool.Pool }

func NewClientRepo(db *pgxpool.Pool) *ClientRepo { return &ClientRepo{db: db} }

const clientColumns = `id, name, contact_email, phone, website, notes, created_at, updated_at`

func scanClient(row pgx.Row, c *domain.Client) error {
	return row.Scan(&c.ID, &c.Name, &c.ContactEmail, &c.Phone, &c.Website, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
}

// List returns a page of clients and the total count. Free text matches
// name or contact email.
func (r *ClientRepo) List(ctx context.Context, f repository.ClientFilter) ([]domain.Client, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(name ILIKE $"+itoa(len(args)-1)+" OR contact_email ILIKE $"+itoa(len(args))+")")
	}

	countSQL := `SELECT COUNT(*) FROM clients WHERE ` + strings.Join(clauses, " AND ")
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	listSQL := fmt.Sprintf(`
		SELECT %s
		FROM clients
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d
	`, clientColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := scanClient(rows, &c); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *ClientRepo) Get(ctx context.Context, id string) (*domain.Client, error) {
	var c domain.Client
	err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1`, id), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepo) Create(ctx context.Context, c *domain.Client) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO clients (name, contact_email, phone, website, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at
	`, c.Name, c.ContactEmail, c.Phone, c.Website, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ClientRepo) Update(ctx context.Context, c *domain.Client) error {
	err := r.db.QueryRow(ctx, `
		UPDATE clients
		SET name=$1, contact_email=$2, phone=$3, website=$4, notes=$5, updated_at=now()
		WHERE id=$6
		RETURNING created_at, updated_at
	`, c.Name, c.ContactEmail, c.Phone, c.Website, c.Notes, c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrClientNotFound
		}
		return err
	}
	return nil
}

func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
