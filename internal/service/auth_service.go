package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidInput wraps register-time validation failures so handlers
	// can map them to 400 without string matching.
	ErrInvalidInput = errors.New("invalid input")
)

type AuthService struct {
	users         repository.UserRepository
	sessionSecret string
	sessionTTL    time.Duration
}

func NewAuthService(users repository.UserRepository, sessionSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{users: users, sessionSecret: sessionSecret, sessionTTL: sessionTTL}
}

// Register creates a self-service account. The role is always USER; staff
// accounts are provisioned by admins through user management. Emails are
// stored lowercased so lookups stay exact-match.
func (a *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, Name: name, Role: domain.RoleUser, Active: true}
	if err := a.users.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and mints a session token. Unknown accounts,
// wrong passwords, and deactivated accounts all come back as
// ErrInvalidCredentials.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, hash, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !u.Active {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, string(u.Role), a.sessionTTL)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}
