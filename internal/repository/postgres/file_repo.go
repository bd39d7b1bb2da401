package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
)

type FileRepo struct{ db *pgxpool.Pool }

func NewFileRepo(db *pgxpool.Pool) *FileRepo { return &FileRepo{db: db} }

func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO files (issue_id, uploaded_by, name, blob_key, size, content_type)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`, f.IssueID, f.UploadedByID, f.Name, f.Key, f.Size, f.ContentType).
		Scan(&f.ID, &f.CreatedAt)
	return translatePgError(err)
}

func (r *FileRepo) Get(ctx context.Context, id string) (*domain.File, error) {
	var f domain.File
	err := r.db.QueryRow(ctx, `
		SELECT id, issue_id, uploaded_by, name, blob_key, size, content_type, created_at
		FROM files WHERE id=$1
	`, id).Scan(&f.ID, &f.IssueID, &f.UploadedByID, &f.Name, &f.Key, &f.Size, &f.ContentType, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FileRepo) ListByIssue(ctx context.Context, issueID string) ([]domain.File, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, issue_id, uploaded_by, name, blob_key, size, content_type, created_at
		FROM files
		WHERE issue_id=$1
		ORDER BY created_at ASC
	`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.File
	for rows.Next() {
		var f domain.File
		if err := rows.Scan(&f.ID, &f.IssueID, &f.UploadedByID, &f.Name, &f.Key, &f.Size, &f.ContentType, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
