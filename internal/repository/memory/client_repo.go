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

type ClientRepo struct{ s *Store }

var _ repository.ClientRepository = (*ClientRepo)(nil)

func (r *ClientRepo) List(_ context.Context, f repository.ClientFilter) ([]domain.Client, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var matched []domain.Client
	for _, c := range r.s.clients {
		if q := strings.TrimSpace(f.Q); q != "" {
			if !containsFold(c.Name, q) && !containsFold(c.ContactEmail, q) {
				continue
			}
		}
		matched = append(matched, c)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	return page(matched, f.Limit, f.Offset), total, nil
}

func (r *ClientRepo) Get(_ context.Context, id string) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

func (r *ClientRepo) Create(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) Update(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.clients[c.ID]
	if !ok {
		return domain.ErrClientNotFound
	}
	cur.Name = c.Name
	cur.ContactEmail = c.ContactEmail
	cur.Phone = c.Phone
	cur.Website = c.Website
	cur.Notes = c.Notes
	cur.UpdatedAt = time.Now().UTC()
	r.s.clients[c.ID] = cur

	*c = cur
	return nil
}

// Delete releases issue and user references the way the SQL schema does
// with ON DELETE SET NULL.
func (r *ClientRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.s.clients, id)
	for iid, is := range r.s.issues {
		if is.ClientID == id {
			is.ClientID = ""
			r.s.issues[iid] = is
		}
	}
	for uid, u := range r.s.users {
		if u.ClientID == id {
			u.ClientID = ""
			r.s.users[uid] = u
		}
	}
	return nil
}
