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

type IssueRepo struct{ s *Store }

var _ repository.IssueRepository = (*IssueRepo)(nil)

func (r *IssueRepo) List(_ context.Context, f repository.IssueFilter) ([]domain.Issue, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var matched []domain.Issue
	for _, is := range r.s.issues {
		if !issueMatches(is, f) {
			continue
		}
		r.s.fillIssueNames(&is)
		matched = append(matched, is)
	}

	sortIssues(matched, f.Sort, f.Order)
	total := len(matched)
	return page(matched, f.Limit, f.Offset), total, nil
}

func issueMatches(is domain.Issue, f repository.IssueFilter) bool {
	if q := strings.TrimSpace(f.Q); q != "" {
		if !containsFold(is.Title, q) && !containsFold(is.Description, q) {
			return false
		}
	}
	if v := strings.TrimSpace(f.Status); v != "" && string(is.Status) != v {
		return false
	}
	if v := strings.TrimSpace(f.Priority); v != "" && string(is.Priority) != v {
		return false
	}
	if v := strings.TrimSpace(f.ClientID); v != "" && is.ClientID != v {
		return false
	}
	if v := strings.TrimSpace(f.AssigneeID); v != "" && is.AssignedToID != v {
		return false
	}
	if v := strings.TrimSpace(f.ReporterID); v != "" && is.ReportedByID != v {
		return false
	}
	if v := strings.TrimSpace(f.InvolvedUserID); v != "" && is.ReportedByID != v && is.AssignedToID != v {
		return false
	}
	return true
}

// sortIssues matches the ordering the SQL store produces, including the
// plain text comparison on the priority column.
func sortIssues(issues []domain.Issue, sortBy, order string) {
	desc := strings.ToLower(strings.TrimSpace(order)) != "asc"
	var less func(a, b domain.Issue) bool
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "created_at":
		less = func(a, b domain.Issue) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "priority":
		less = func(a, b domain.Issue) bool { return a.Priority < b.Priority }
	default:
		less = func(a, b domain.Issue) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if desc {
			return less(issues[j], issues[i])
		}
		return less(issues[i], issues[j])
	})
}

func (s *Store) fillIssueNames(is *domain.Issue) {
	if u, ok := s.users[is.ReportedByID]; ok {
		is.ReporterName = u.Name
	}
	if u, ok := s.users[is.AssignedToID]; ok {
		is.AssigneeName = u.Name
	}
}

func (r *IssueRepo) Get(_ context.Context, id string) (*domain.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	is, ok := r.s.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	r.s.fillIssueNames(&is)
	is.Comments = r.s.commentsForIssue(id)
	return &is, nil
}

func (r *IssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[issue.ReportedByID]; !ok {
		return domain.ErrUserNotFound
	}
	if issue.AssignedToID != "" {
		if _, ok := r.s.users[issue.AssignedToID]; !ok {
			return domain.ErrUserNotFound
		}
	}
	if issue.ClientID != "" {
		if _, ok := r.s.clients[issue.ClientID]; !ok {
			return domain.ErrClientNotFound
		}
	}

	now := time.Now().UTC()
	issue.ID = uuid.NewString()
	issue.Status = domain.StatusNew
	issue.CreatedAt = now
	issue.UpdatedAt = now

	stored := *issue
	stored.Comments = nil
	r.s.issues[issue.ID] = stored
	return nil
}

func (r *IssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.issues[issue.ID]
	if !ok {
		return domain.ErrIssueNotFound
	}
	if issue.AssignedToID != "" {
		if _, ok := r.s.users[issue.AssignedToID]; !ok {
			return domain.ErrUserNotFound
		}
	}
	if issue.ClientID != "" {
		if _, ok := r.s.clients[issue.ClientID]; !ok {
			return domain.ErrClientNotFound
		}
	}

	cur.Title = issue.Title
	cur.Description = issue.Description
	cur.Priority = issue.Priority
	cur.ClientID = issue.ClientID
	cur.AssignedToID = issue.AssignedToID
	cur.UpdatedAt = time.Now().UTC()
	r.s.issues[issue.ID] = cur

	*issue = cur
	return nil
}

// UpdateStatus applies the same compare-and-swap the SQL store does: the
// write only lands while the row still carries from.
func (r *IssueRepo) UpdateStatus(_ context.Context, id string, from, to domain.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.issues[id]
	if !ok {
		return domain.ErrIssueNotFound
	}
	if cur.Status != from {
		return domain.ErrStatusConflict
	}
	cur.Status = to
	cur.UpdatedAt = time.Now().UTC()
	r.s.issues[id] = cur
	return nil
}

func (r *IssueRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.issues[id]; !ok {
		return domain.ErrIssueNotFound
	}
	delete(r.s.issues, id)
	for cid, c := range r.s.comments {
		if c.IssueID == id {
			delete(r.s.comments, cid)
		}
	}
	for fid, f := range r.s.files {
		if f.IssueID == id {
			delete(r.s.files, fid)
		}
	}
	for nid, n := range r.s.notifications {
		if n.IssueID == id {
			delete(r.s.notifications, nid)
		}
	}
	return nil
}

func (r *IssueRepo) AddComment(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.issues[c.IssueID]; !ok {
		return domain.ErrIssueNotFound
	}
	if _, ok := r.s.users[c.CreatedByID]; !ok {
		return domain.ErrUserNotFound
	}

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	stored := *c
	stored.AuthorName = ""
	r.s.comments[c.ID] = stored
	if u, ok := r.s.users[c.CreatedByID]; ok {
		c.AuthorName = u.Name
	}
	return nil
}

func (s *Store) commentsForIssue(issueID string) []domain.Comment {
	var out []domain.Comment
	for _, c := range s.comments {
		if c.IssueID != issueID {
			continue
		}
		if u, ok := s.users[c.CreatedByID]; ok {
			c.AuthorName = u.Name
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *IssueRepo) ListComments(_ context.Context, issueID string) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.commentsForIssue(issueID), nil
}

func (r *IssueRepo) GetComment(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	if u, ok := r.s.users[c.CreatedByID]; ok {
		c.AuthorName = u.Name
	}
	return &c, nil
}

func (r *IssueRepo) DeleteComment(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *IssueRepo) CountByStatus(_ context.Context) (map[domain.Status]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[domain.Status]int, 8)
	for _, is := range r.s.issues {
		out[is.Status]++
	}
	return out, nil
}

func (r *IssueRepo) CountResolvedSince(_ context.Context, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, is := range r.s.issues {
		if is.Status.IsResolved() && !is.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *IssueRepo) CountOpenByPriorities(_ context.Context, priorities []domain.Priority) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[domain.Priority]struct{}, len(priorities))
	for _, p := range priorities {
		wanted[p] = struct{}{}
	}

	n := 0
	for _, is := range r.s.issues {
		if is.Status.IsResolved() {
			continue
		}
		if _, ok := wanted[is.Priority]; ok {
			n++
		}
	}
	return n, nil
}
