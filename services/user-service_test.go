package services_test

import (
	"context"
	"testing"

	"taskflow/backend/authz"
	"taskflow/backend/models"
	"taskflow/backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListUsersByRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	users, err := e.userSvc.ListUsers(ctx, e.admin)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	users, err = e.userSvc.ListUsers(ctx, e.manager)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = e.userSvc.ListUsers(ctx, e.plainUser)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestCreateUserAdminOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	created, err := e.userSvc.CreateUser(ctx, e.admin, services.UserInput{
		Name:     "New Manager",
		Email:    "new.manager@test.com",
		Password: "secret123",
		Role:     "Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, created.Role)
	assert.NotEqual(t, "secret123", created.Password, "password must be stored hashed")

	_, err = e.userSvc.CreateUser(ctx, e.manager, services.UserInput{
		Name:     "Sneaky",
		Email:    "sneaky@test.com",
		Password: "x",
		Role:     "Admin",
	})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = e.userSvc.CreateUser(ctx, e.admin, services.UserInput{
		Name:     "Bad Role",
		Email:    "bad@test.com",
		Password: "x",
		Role:     "Superuser",
	})
	assert.ErrorIs(t, err, authz.ErrValidation)
}

func TestUpdateUserRoleChange(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	role := "Manager"
	updated, err := e.userSvc.UpdateUser(ctx, e.admin, e.userID, services.UserUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, updated.Role)

	_, err = e.userSvc.UpdateUser(ctx, e.manager, e.userID, services.UserUpdate{Role: &role})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestDeleteUserDeniedWhileManagingProjects(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.projectSvc.CreateProject(ctx, e.manager, services.ProjectInput{Name: "Launch", Description: "Q1 launch"})
	require.NoError(t, err)

	err = e.userSvc.DeleteUser(ctx, e.admin, e.managerID)
	assert.ErrorIs(t, err, authz.ErrConflict)

	// The account must still exist after the refused delete.
	_, err = e.users.GetByID(ctx, e.managerID)
	assert.NoError(t, err)
}

func TestDeleteUserDetachesFromTeams(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	project, err := e.projectSvc.CreateProject(ctx, e.manager, services.ProjectInput{Name: "Launch", Description: "Q1 launch"})
	require.NoError(t, err)
	team := []string{e.userID.Hex()}
	_, err = e.projectSvc.UpdateProject(ctx, e.manager, project.ID, services.ProjectUpdate{Team: &team})
	require.NoError(t, err)

	require.NoError(t, e.userSvc.DeleteUser(ctx, e.admin, e.userID))

	stored, err := e.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Team)

	_, err = e.users.GetByID(ctx, e.userID)
	assert.ErrorIs(t, err, authz.ErrNotFound)
}

func TestDeleteUserAdminOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	assert.ErrorIs(t, e.userSvc.DeleteUser(ctx, e.manager, e.userID), authz.ErrForbidden)
	assert.ErrorIs(t, e.userSvc.DeleteUser(ctx, e.plainUser, e.userID), authz.ErrForbidden)

	err := e.userSvc.DeleteUser(ctx, e.admin, primitive.NewObjectID())
	assert.ErrorIs(t, err, authz.ErrNotFound)
}
