package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

type FileRepo struct{ s *Store }

var _ repository.FileRepository = (*FileRepo)(nil)

func (r *FileRepo) Create(_ context.Context, f *domain.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.issues[f.IssueID]; !ok {
		return domain.ErrIssueNotFound
	}
	if _, ok := r.s.users[f.UploadedByID]; !ok {
		return domain.ErrUserNotFound
	}

	f.ID = uuid.NewString()
	f.CreatedAt = time.Now().UTC()
	r.s.files[f.ID] = *f
	return nil
}

func (r *FileRepo) Get(_ context.Context, id string) (*domain.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.files[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return &f, nil
}

func (r *FileRepo) ListByIssue(_ context.Context, issueID string) ([]domain.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.File
	for _, f := range r.s.files {
		if f.IssueID == issueID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *FileRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.files[id]; !ok {
		return domain.ErrFileNotFound
	}
	delete(r.s.files, id)
	return nil
}
