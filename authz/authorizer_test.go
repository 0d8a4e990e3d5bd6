package authz_test

import (
	"context"
	"testing"

	"taskflow/backend/authz"
	"taskflow/backend/models"
	"taskflow/backend/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	users      *repositories.UserInMemRepository
	projects   *repositories.ProjectInMemRepository
	tasks      *repositories.TaskInMemRepository
	authorizer *authz.Authorizer
}

func newFixture() *fixture {
	users := repositories.NewUserInMemRepository()
	projects := repositories.NewProjectInMemRepository()
	tasks := repositories.NewTaskInMemRepository()
	return &fixture{
		users:    users,
		projects: projects,
		tasks:    tasks,
		authorizer: authz.NewAuthorizer(repositories.Store{
			Users:    users,
			Projects: projects,
			Tasks:    tasks,
		}),
	}
}

func TestAuthorizeCreate(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name     string
		role     models.Role
		resource authz.Resource
		allowed  bool
	}{
		{"admin creates project", models.RoleAdmin, authz.ResourceProject, true},
		{"manager creates project", models.RoleManager, authz.ResourceProject, true},
		{"user creates project", models.RoleUser, authz.ResourceProject, false},
		{"admin creates task", models.RoleAdmin, authz.ResourceTask, true},
		{"manager creates task", models.RoleManager, authz.ResourceTask, true},
		{"user creates task", models.RoleUser, authz.ResourceTask, false},
		{"admin creates user", models.RoleAdmin, authz.ResourceUser, true},
		{"manager creates user", models.RoleManager, authz.ResourceUser, false},
		{"user creates user", models.RoleUser, authz.ResourceUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := authz.Identity{UserID: primitive.NewObjectID(), Role: tt.role}
			_, err := f.authorizer.AuthorizeCreate(identity, tt.resource)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, authz.ErrForbidden)
			}
		})
	}
}

func TestAuthorizeProjectOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	owner := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	rival := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	admin := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}

	project, err := f.projects.Create(ctx, models.Project{Name: "Launch", ManagerID: owner.UserID})
	require.NoError(t, err)

	_, _, err = f.authorizer.Authorize(ctx, owner, authz.OpUpdate, authz.ResourceProject, project.ID)
	assert.NoError(t, err)

	_, _, err = f.authorizer.Authorize(ctx, admin, authz.OpDelete, authz.ResourceProject, project.ID)
	assert.NoError(t, err)

	// A rival manager holds the role but fails the ownership predicate.
	_, _, err = f.authorizer.Authorize(ctx, rival, authz.OpUpdate, authz.ResourceProject, project.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestAuthorizeProbingPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	manager := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	member := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleUser}
	outsider := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleUser}

	project, err := f.projects.Create(ctx, models.Project{
		Name:      "Launch",
		ManagerID: manager.UserID,
		Team:      []primitive.ObjectID{member.UserID},
	})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, models.Task{Title: "Ship it", ProjectID: project.ID, AssignedToID: member.UserID})
	require.NoError(t, err)

	// A team member can see the project, so the denial says Forbidden.
	_, _, err = f.authorizer.Authorize(ctx, member, authz.OpUpdate, authz.ResourceProject, project.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	// A user outside the team probing the project id, or probing someone
	// else's task id, learns nothing: both answer NotFound.
	_, _, err = f.authorizer.Authorize(ctx, outsider, authz.OpUpdate, authz.ResourceProject, project.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)
	assert.NotErrorIs(t, err, authz.ErrForbidden)

	_, _, err = f.authorizer.Authorize(ctx, outsider, authz.OpUpdate, authz.ResourceTask, task.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	// Manager denials stay Forbidden: ownership rules name that outcome.
	rival := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	_, _, err = f.authorizer.Authorize(ctx, rival, authz.OpUpdate, authz.ResourceProject, project.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	// A missing id answers NotFound for everyone.
	_, _, err = f.authorizer.Authorize(ctx, manager, authz.OpUpdate, authz.ResourceProject, primitive.NewObjectID())
	assert.ErrorIs(t, err, authz.ErrNotFound)
}

func TestAuthorizeOwnershipRecheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	manager := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	project, err := f.projects.Create(ctx, models.Project{Name: "Launch", ManagerID: manager.UserID})
	require.NoError(t, err)

	_, _, err = f.authorizer.Authorize(ctx, manager, authz.OpDelete, authz.ResourceProject, project.ID)
	require.NoError(t, err)

	// Reassign the project out from under the manager; the very next check
	// must observe the stored state, not any earlier success.
	project.ManagerID = primitive.NewObjectID()
	require.NoError(t, f.projects.Update(ctx, project))

	_, _, err = f.authorizer.Authorize(ctx, manager, authz.OpDelete, authz.ResourceProject, project.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestAuthorizeTaskMutableFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	manager := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	assignee := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleUser}

	project, err := f.projects.Create(ctx, models.Project{Name: "Launch", ManagerID: manager.UserID})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, models.Task{Title: "Ship it", ProjectID: project.ID, AssignedToID: assignee.UserID})
	require.NoError(t, err)

	decision, _, err := f.authorizer.Authorize(ctx, assignee, authz.OpUpdate, authz.ResourceTask, task.ID)
	require.NoError(t, err)
	assert.True(t, decision.CanMutate("status"))
	assert.False(t, decision.CanMutate("title"))
	assert.False(t, decision.CanMutate("assignedTo"))

	decision, _, err = f.authorizer.Authorize(ctx, manager, authz.OpUpdate, authz.ResourceTask, task.ID)
	require.NoError(t, err)
	assert.True(t, decision.CanMutate("title"))
	assert.True(t, decision.CanMutate("deadline"))
}

func TestAuthorizeTaskDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	manager := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	admin := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}

	project, err := f.projects.Create(ctx, models.Project{Name: "Launch", ManagerID: manager.UserID})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, models.Task{Title: "Ship it", ProjectID: project.ID, AssignedToID: primitive.NewObjectID()})
	require.NoError(t, err)

	// The managing manager can see the task but deletion stays admin-only.
	_, _, err = f.authorizer.Authorize(ctx, manager, authz.OpDelete, authz.ResourceTask, task.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, _, err = f.authorizer.Authorize(ctx, admin, authz.OpDelete, authz.ResourceTask, task.ID)
	assert.NoError(t, err)
}

func TestAuthorizeUserResource(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	admin := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
	manager := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleManager}
	user := authz.Identity{UserID: primitive.NewObjectID(), Role: models.RoleUser}

	account, err := f.users.Create(ctx, models.User{Name: "Pat", Email: "pat@taskflow.com", Role: models.RoleUser})
	require.NoError(t, err)

	_, _, err = f.authorizer.Authorize(ctx, admin, authz.OpUpdate, authz.ResourceUser, account.ID)
	assert.NoError(t, err)

	// Account mutations are admin-only regardless of listing rights.
	_, _, err = f.authorizer.Authorize(ctx, manager, authz.OpUpdate, authz.ResourceUser, account.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	// A regular user probing someone else's account id gets NotFound; on
	// their own account, which they can see, the denial says Forbidden.
	_, _, err = f.authorizer.Authorize(ctx, user, authz.OpDelete, authz.ResourceUser, account.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	self := authz.Identity{UserID: account.ID, Role: models.RoleUser}
	_, _, err = f.authorizer.Authorize(ctx, self, authz.OpDelete, authz.ResourceUser, account.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}
