// Package memory holds an in-process implementation of the repository
// interfaces. It backs STORAGE_TYPE=memory and the handler tests, and
// mirrors the postgres semantics: sentinel errors, compare-and-swap
// status writes and reference checks included.
package memory

import (
	"strings"
	"sync"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
)

// Store is the shared data core. All entity repos operate on the same
// maps under one lock so cross-entity rules (cascades, reference checks)
// stay consistent.
type Store struct {
	mu            sync.RWMutex
	issues        map[string]domain.Issue
	comments      map[string]domain.Comment
	files         map[string]domain.File
	clients       map[string]domain.Client
	users         map[string]domain.User
	passwords     map[string]string // user id -> bcrypt hash
	notifications map[string]domain.Notification
}

func NewStore() *Store {
	return &Store{
		issues:        make(map[string]domain.Issue),
		comments:      make(map[string]domain.Comment),
		files:         make(map[string]domain.File),
		clients:       make(map[string]domain.Client),
		users:         make(map[string]domain.User),
		passwords:     make(map[string]string),
		notifications: make(map[string]domain.Notification),
	}
}

func (s *Store) Issues() *IssueRepo               { return &IssueRepo{s: s} }
func (s *Store) Clients() *ClientRepo             { return &ClientRepo{s: s} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{s: s} }
func (s *Store) Files() *FileRepo                 { return &FileRepo{s: s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
