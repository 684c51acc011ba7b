// Package app contains the application services: the survey orchestrator
// components and the admin-surface implementations behind the primary
// ports.
package app

import (
	"context"
	"fmt"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// AudienceResolver turns a survey's audience predicate into the concrete
// recipient set. Resolution is snapshot-at-fire-time: the delivery worker
// calls it once per fan-out and later role changes do not touch
// already-delivered surveys.
type AudienceResolver struct {
	users secondary.UserRepository
}

// NewAudienceResolver creates a resolver over the user directory.
func NewAudienceResolver(users secondary.UserRepository) *AudienceResolver {
	return &AudienceResolver{users: users}
}

// Resolve returns the users the audience matches. Only users with a chat
// id are ever included. An empty result is valid: the survey completes with
// zero recipients.
func (r *AudienceResolver) Resolve(ctx context.Context, audience models.Audience) ([]*models.User, error) {
	switch audience.Kind {
	case models.AudienceAll:
		users, err := r.users.ListWithChat(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve audience: %w", err)
		}
		return users, nil
	case models.AudienceRole:
		if !models.ValidRole(audience.Role) {
			return nil, apperr.New(apperr.KindValidation, "unknown role %q", audience.Role)
		}
		users, err := r.users.ListByRoleWithChat(ctx, audience.Role)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve audience: %w", err)
		}
		return users, nil
	default:
		return nil, apperr.New(apperr.KindValidation, "unknown audience kind %q", audience.Kind)
	}
}
