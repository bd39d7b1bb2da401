package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, name, role, active, COALESCE(client_id::text, ''), created_at, updated_at`

func scanUser(row pgx.Row, u *domain.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active, &u.ClientID, &u.CreatedAt, &u.UpdatedAt)
}

// Create stores the account with its bcrypt hash in password_h.
func (r *UserRepo) Create(ctx context.Context, u *domain.User, passwordHash string) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, role, active, client_id, password_h)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Name, u.Role, u.Active, nullIfEmpty(u.ClientID), passwordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return translatePgError(err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	var u domain.User
	var ph string
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, role, active, COALESCE(client_id::text, ''), password_h, created_at, updated_at
		FROM users WHERE email=$1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active, &u.ClientID, &ph, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", err
	}
	return &u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns a filtered, paginated page of users and the total count.
// Free text matches email or name.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]domain.User, int, error) {
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
		clauses = append(clauses, "(email ILIKE $"+itoa(len(args)-1)+" OR name ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Role); s != "" {
		args = append(args, s)
		clauses = append(clauses, "role = $"+itoa(len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		clauses = append(clauses, "active = $"+itoa(len(args)))
	}

	countSQL := `SELECT COUNT(*) FROM users WHERE ` + strings.Join(clauses, " AND ")
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	listSQL := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET email=$1, name=$2, role=$3, active=$4, client_id=$5, updated_at=now()
		WHERE id=$6
		RETURNING created_at, updated_at
	`, u.Email, u.Name, u.Role, u.Active, nullIfEmpty(u.ClientID), u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return translatePgError(err)
	}
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE users SET password_h=$1, updated_at=now() WHERE id=$2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes the account. Issues, comments and files keep their
// author references, so a user who still owns any of them cannot be
// deleted; assignments and notifications are released by the schema.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrUserReferenced
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
