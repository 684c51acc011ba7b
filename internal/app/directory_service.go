package app

import (
	"context"
	"fmt"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/primary"
	"github.com/example/standup/internal/ports/secondary"
)

// DirectoryServiceImpl implements the DirectoryService interface.
type DirectoryServiceImpl struct {
	users secondary.UserRepository
}

// NewDirectoryService creates a new DirectoryService with injected
// dependencies.
func NewDirectoryService(users secondary.UserRepository) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{users: users}
}

// AddUser registers a user in the directory.
func (s *DirectoryServiceImpl) AddUser(ctx context.Context, req primary.AddUserRequest) (*primary.User, error) {
	if req.DisplayName == "" {
		return nil, apperr.New(apperr.KindValidation, "display name must not be empty")
	}
	role := req.Role
	if role == "" {
		role = models.RoleWorker
	}
	if !models.ValidRole(role) {
		return nil, apperr.New(apperr.KindValidation, "unknown role %q", role)
	}

	if req.ChatID != "" {
		existing, err := s.users.GetByChatID(ctx, req.ChatID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperr.New(apperr.KindValidation, "chat %s is already registered to %s", req.ChatID, existing.DisplayName)
		}
	}

	id, err := s.users.Create(ctx, &models.User{
		ChatID:           req.ChatID,
		DisplayName:      req.DisplayName,
		Role:             role,
		ExternalIdentity: req.ExternalIdentity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add user: %w", err)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userToPort(user), nil
}

// SetRole changes a user's role tag. Audiences of already-delivered
// surveys are frozen and unaffected.
func (s *DirectoryServiceImpl) SetRole(ctx context.Context, userID int64, role string) error {
	if !models.ValidRole(role) {
		return apperr.New(apperr.KindValidation, "unknown role %q", role)
	}
	return s.users.SetRole(ctx, userID, role)
}

// ListUsers lists the whole directory.
func (s *DirectoryServiceImpl) ListUsers(ctx context.Context) ([]*primary.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]*primary.User, len(users))
	for i, user := range users {
		out[i] = userToPort(user)
	}
	return out, nil
}

func userToPort(u *models.User) *primary.User {
	return &primary.User{
		ID:               u.ID,
		ChatID:           u.ChatID,
		DisplayName:      u.DisplayName,
		Role:             u.Role,
		ExternalIdentity: u.ExternalIdentity,
		CreatedAt:        formatTime(u.CreatedAt),
	}
}

// Ensure DirectoryServiceImpl implements the interface
var _ primary.DirectoryService = (*DirectoryServiceImpl)(nil)
