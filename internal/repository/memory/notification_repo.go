package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
)

type NotificationRepo struct{ s *Store }

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[n.UserID]; !ok {
		return domain.ErrUserNotFound
	}

	n.ID = uuid.NewString()
	n.Read = false
	n.CreatedAt = time.Now().UTC()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepo) Get(_ context.Context, id string) (*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return &n, nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, f repository.NotificationFilter) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var out []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID != f.UserID {
			continue
		}
		if f.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[j].CreatedAt.Before(out[i].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	r.s.notifications[id] = n
	return nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
		}
	}
	return nil
}
