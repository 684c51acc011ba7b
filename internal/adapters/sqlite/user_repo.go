package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository with SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user and returns its id.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	var chatID, external sql.NullString
	if user.ChatID != "" {
		chatID = sql.NullString{String: user.ChatID, Valid: true}
	}
	if user.ExternalIdentity != "" {
		external = sql.NullString{String: user.ExternalIdentity, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, display_name, role, external_identity, created_at) VALUES (?, ?, ?, ?, ?)`,
		chatID, user.DisplayName, user.Role, external, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return id, nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT user_id, chat_id, display_name, role, external_identity, created_at FROM users WHERE user_id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByChatID retrieves the user registered under a chat id, or nil.
func (r *UserRepository) GetByChatID(ctx context.Context, chatID string) (*models.User, error) {
	user, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT user_id, chat_id, display_name, role, external_identity, created_at FROM users WHERE chat_id = ?`, chatID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by chat id: %w", err)
	}
	return user, nil
}

// SetRole updates a user's role tag.
func (r *UserRepository) SetRole(ctx context.Context, id int64, role string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE user_id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "user %d not found", id)
	}
	return nil
}

// ListWithChat retrieves every user with a chat id set.
func (r *UserRepository) ListWithChat(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx,
		`SELECT user_id, chat_id, display_name, role, external_identity, created_at FROM users WHERE chat_id IS NOT NULL ORDER BY user_id ASC`)
}

// ListByRoleWithChat retrieves users with the given role and a chat id.
func (r *UserRepository) ListByRoleWithChat(ctx context.Context, role string) ([]*models.User, error) {
	return r.list(ctx,
		`SELECT user_id, chat_id, display_name, role, external_identity, created_at FROM users WHERE role = ? AND chat_id IS NOT NULL ORDER BY user_id ASC`,
		role)
}

// ListAll retrieves the whole directory.
func (r *UserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx,
		`SELECT user_id, chat_id, display_name, role, external_identity, created_at FROM users ORDER BY user_id ASC`)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) scanOne(s scanner) (*models.User, error) {
	var (
		user     models.User
		chatID   sql.NullString
		external sql.NullString
	)
	err := s.Scan(&user.ID, &chatID, &user.DisplayName, &user.Role, &external, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.ChatID = chatID.String
	user.ExternalIdentity = external.String
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

// Ensure UserRepository implements the interface
var _ secondary.UserRepository = (*UserRepository)(nil)
