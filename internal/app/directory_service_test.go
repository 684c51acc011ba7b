package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/primary"
)

func TestAddUserDefaultsToWorker(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	svc := NewDirectoryService(env.users)

	user, err := svc.AddUser(context.Background(), primary.AddUserRequest{
		ChatID:      "chat-alice",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorker, user.Role)
	assert.Equal(t, "chat-alice", user.ChatID)
}

func TestAddUserValidation(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	svc := NewDirectoryService(env.users)
	ctx := context.Background()

	_, err := svc.AddUser(ctx, primary.AddUserRequest{DisplayName: ""})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	_, err = svc.AddUser(ctx, primary.AddUserRequest{DisplayName: "Alice", Role: "intern"})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestAddUserRejectsDuplicateChat(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	svc := NewDirectoryService(env.users)
	ctx := context.Background()

	_, err := svc.AddUser(ctx, primary.AddUserRequest{ChatID: "chat-1", DisplayName: "Alice"})
	require.NoError(t, err)

	_, err = svc.AddUser(ctx, primary.AddUserRequest{ChatID: "chat-1", DisplayName: "Impostor"})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestSetRole(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	svc := NewDirectoryService(env.users)
	ctx := context.Background()

	id := env.addUser(t, "chat-alice", "Alice", "")

	require.NoError(t, svc.SetRole(ctx, id, models.RoleLead))
	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleLead, users[0].Role)

	err = svc.SetRole(ctx, id, "intern")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	err = svc.SetRole(ctx, 999, models.RoleWorker)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestRoleChangeDoesNotTouchDeliveredSurvey(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	alice := env.addUser(t, "chat-alice", "Alice", models.RoleLead)
	survey := env.addSurvey(t, "Lead check-in?", testFireAt, models.AudienceOfRole(models.RoleLead))
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	// Demote after delivery: the ladder stays armed for the frozen
	// recipient set.
	require.NoError(t, NewDirectoryService(env.users).SetRole(ctx, alice, models.RoleWorker))

	env.clock.Advance(31 * time.Second)
	require.NoError(t, env.newEngine().Tick(ctx))
	assert.Len(t, env.transport.SentTo("chat-alice"), 2)
}
