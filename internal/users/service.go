package users

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	RoleOf(ctx context.Context, principalID string) (string, error)
	SetStatusByEmail(ctx context.Context, email string, status Status) error
}

// Service handles user moderation rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RoleOf returns the role of principalID.
func (s *Service) RoleOf(ctx context.Context, principalID string) (string, error) {
	if strings.TrimSpace(principalID) == "" {
		return "", ErrNotFound
	}
	return s.repo.RoleOf(ctx, principalID)
}

// Block marks the account as blocked.
func (s *Service) Block(ctx context.Context, email string) error {
	return s.setStatus(ctx, email, StatusBlocked)
}

// Unblock restores the account to active.
func (s *Service) Unblock(ctx context.Context, email string) error {
	return s.setStatus(ctx, email, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, email string, status Status) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("users: email required")
	}
	return s.repo.SetStatusByEmail(ctx, email, status)
}
