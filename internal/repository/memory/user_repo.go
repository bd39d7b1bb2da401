package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (s *Store) emailTakenLocked(email, exceptID string) bool {
	for _, u := range s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *domain.User, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTakenLocked(u.Email, "") {
		return domain.ErrEmailTaken
	}
	if u.ClientID != "" {
		if _, ok := r.s.clients[u.ClientID]; !ok {
			return domain.ErrClientNotFound
		}
	}

	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = *u
	r.s.passwords[u.ID] = passwordHash
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, r.s.passwords[u.ID], nil
		}
	}
	return nil, "", domain.ErrUserNotFound
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]domain.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var matched []domain.User
	for _, u := range r.s.users {
		if q := strings.TrimSpace(f.Q); q != "" {
			if !containsFold(u.Email, q) && !containsFold(u.Name, q) {
				continue
			}
		}
		if v := strings.TrimSpace(f.Role); v != "" && string(u.Role) != v {
			continue
		}
		if f.Active != nil && u.Active != *f.Active {
			continue
		}
		matched = append(matched, u)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[j].UpdatedAt.Before(matched[i].UpdatedAt) })

	total := len(matched)
	return page(matched, f.Limit, f.Offset), total, nil
}

func (r *UserRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if r.s.emailTakenLocked(u.Email, u.ID) {
		return domain.ErrEmailTaken
	}
	if u.ClientID != "" {
		if _, ok := r.s.clients[u.ClientID]; !ok {
			return domain.ErrClientNotFound
		}
	}

	cur.Email = u.Email
	cur.Name = u.Name
	cur.Role = u.Role
	cur.Active = u.Active
	cur.ClientID = u.ClientID
	cur.UpdatedAt = time.Now().UTC()
	r.s.users[u.ID] = cur

	*u = cur
	return nil
}

func (r *UserRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.passwords[id] = passwordHash
	return nil
}

// Delete refuses while the user still owns issues, comments or files,
// matching the SQL foreign keys. Assignments are released and the user's
// notifications removed.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	for _, is := range r.s.issues {
		if is.ReportedByID == id {
			return domain.ErrUserReferenced
		}
	}
	for _, c := range r.s.comments {
		if c.CreatedByID == id {
			return domain.ErrUserReferenced
		}
	}
	for _, f := range r.s.files {
		if f.UploadedByID == id {
			return domain.ErrUserReferenced
		}
	}

	delete(r.s.users, id)
	delete(r.s.passwords, id)
	for iid, is := range r.s.issues {
		if is.AssignedToID == id {
			is.AssignedToID = ""
			r.s.issues[iid] = is
		}
	}
	for nid, n := range r.s.notifications {
		if n.UserID == id {
			delete(r.s.notifications, nid)
		}
	}
	return nil
}
