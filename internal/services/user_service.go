package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSearchQueryRequired = errors.New("search query is required")
	ErrInvalidUsername     = errors.New("username cannot be empty")
)

// UserService covers user lookups and profile changes.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Search matches users case-insensitively by username, and by email too
// unless usernameOnly is set. At most constants.MaxSearchResults users are
// returned, ordered by username.
func (s *UserService) Search(ctx context.Context, p policy.Principal, query string, usernameOnly bool) ([]models.User, error) {
	if err := validatePrincipal(p); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrSearchQueryRequired
	}

	users, err := s.users.Search(ctx, query, usernameOnly, constants.MaxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// GetProfile returns the principal's own user record.
func (s *UserService) GetProfile(ctx context.Context, p policy.Principal) (*models.User, error) {
	if err := validatePrincipal(p); err != nil {
		return nil, err
	}
	return s.find(ctx, p.UserID)
}

// UpdateUsername renames the principal. Uniqueness is left to the
// username index.
func (s *UserService) UpdateUsername(ctx context.Context, p policy.Principal, username string) (*models.User, error) {
	if err := validatePrincipal(p); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	if err := s.users.UpdateUsername(ctx, p.UserID, username); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrUsernameTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("failed to update username: %w", err)
		}
	}

	return s.find(ctx, p.UserID)
}

// SetAdmin grants or revokes the admin flag of the named user.
func (s *UserService) SetAdmin(ctx context.Context, username string, isAdmin bool) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.users.SetAdmin(ctx, user.ID, isAdmin); err != nil {
		return nil, fmt.Errorf("failed to update admin flag: %w", err)
	}
	user.IsAdmin = isAdmin
	return user, nil
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
