package primary

import "context"

// DirectoryService defines the primary port for user-directory management.
type DirectoryService interface {
	// AddUser registers a user in the directory.
	AddUser(ctx context.Context, req AddUserRequest) (*User, error)

	// SetRole changes a user's role tag. The change does not affect
	// audiences of already-delivered surveys.
	SetRole(ctx context.Context, userID int64, role string) error

	// ListUsers lists the whole directory.
	ListUsers(ctx context.Context) ([]*User, error)
}

// AddUserRequest carries the inputs for a new directory entry.
type AddUserRequest struct {
	ChatID           string
	DisplayName      string
	Role             string
	ExternalIdentity string
}

// User represents a directory entry at the port boundary.
type User struct {
	ID               int64
	ChatID           string
	DisplayName      string
	Role             string
	ExternalIdentity string
	CreatedAt        string
}
