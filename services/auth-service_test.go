package services_test

import (
	"context"
	"testing"

	"taskflow/backend/authz"
	"taskflow/backend/models"
	"taskflow/backend/repositories"
	"taskflow/backend/services"
	"taskflow/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaultsToUserRole(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewUserInMemRepository()
	svc := services.NewAuthService(users, services.NewTokenBlacklist())

	user, err := svc.Register(ctx, "Pat", "pat@test.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.Password)

	_, err = svc.Register(ctx, "Pat Again", "pat@test.com", "other")
	assert.ErrorIs(t, err, authz.ErrConflict)

	_, err = svc.Register(ctx, "", "incomplete@test.com", "x")
	assert.ErrorIs(t, err, authz.ErrValidation)
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()
	users := repositories.NewUserInMemRepository()
	svc := services.NewAuthService(users, services.NewTokenBlacklist())

	registered, err := svc.Register(ctx, "Pat", "pat@test.com", "secret123")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "pat@test.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), claims.UserID)
	assert.Equal(t, string(models.RoleUser), claims.Role)

	// Unknown email and wrong password are indistinguishable.
	_, _, err = svc.Login(ctx, "pat@test.com", "wrong")
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
	_, _, err = svc.Login(ctx, "nobody@test.com", "secret123")
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	blacklist := services.NewTokenBlacklist()
	svc := services.NewAuthService(repositories.NewUserInMemRepository(), blacklist)

	svc.Logout("some-token")
	assert.True(t, blacklist.IsBlacklisted("some-token"))
	assert.False(t, blacklist.IsBlacklisted("other-token"))
}

func TestEnsureDefaultUsersSeedsOnce(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewUserInMemRepository()
	svc := services.NewAuthService(users, services.NewTokenBlacklist())

	require.NoError(t, svc.EnsureDefaultUsers(ctx))
	seeded, err := users.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, seeded, 3)
	assert.Equal(t, models.RoleAdmin, seeded[0].Role)

	// A second boot against a populated store must not seed again.
	require.NoError(t, svc.EnsureDefaultUsers(ctx))
	seeded, err = users.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, seeded, 3)
}
