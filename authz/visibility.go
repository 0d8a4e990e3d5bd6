package authz

import (
	"context"

	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectScope describes which projects an identity may read. Exactly one of
// the three fields is meaningful: All for admins, ManagerID for managers,
// MemberID for regular users. Repositories translate a scope into their own
// filter form (bson for Mongo, slice filtering in memory).
type ProjectScope struct {
	All       bool
	ManagerID *primitive.ObjectID
	MemberID  *primitive.ObjectID
}

// TaskScope describes which tasks an identity may read. Managers see tasks of
// the projects they manage (ProjectIDs), users see tasks assigned to them.
type TaskScope struct {
	All        bool
	ProjectIDs []primitive.ObjectID
	AssigneeID *primitive.ObjectID
}

// ProjectLister is the narrow store view the visibility engine needs for the
// manager-to-projects join when scoping tasks.
type ProjectLister interface {
	FindProjects(ctx context.Context, scope ProjectScope) ([]models.Project, error)
}

func ProjectScopeFor(identity Identity) ProjectScope {
	switch identity.Role {
	case models.RoleAdmin:
		return ProjectScope{All: true}
	case models.RoleManager:
		id := identity.UserID
		return ProjectScope{ManagerID: &id}
	default:
		id := identity.UserID
		return ProjectScope{MemberID: &id}
	}
}

// TaskScopeFor resolves the task scope for an identity. For managers this
// re-reads the managed project set from the store so the scope reflects
// reassignments made since the caller last looked.
func TaskScopeFor(ctx context.Context, identity Identity, projects ProjectLister) (TaskScope, error) {
	switch identity.Role {
	case models.RoleAdmin:
		return TaskScope{All: true}, nil
	case models.RoleManager:
		managed, err := projects.FindProjects(ctx, ProjectScopeFor(identity))
		if err != nil {
			return TaskScope{}, err
		}
		ids := make([]primitive.ObjectID, 0, len(managed))
		for _, p := range managed {
			ids = append(ids, p.ID)
		}
		return TaskScope{ProjectIDs: ids}, nil
	default:
		id := identity.UserID
		return TaskScope{AssigneeID: &id}, nil
	}
}

// CanListUsers reports whether the identity may enumerate user accounts.
func CanListUsers(identity Identity) bool {
	return identity.Role == models.RoleAdmin || identity.Role == models.RoleManager
}

// CanSeeProject is the pure form of ProjectScopeFor, used by the authorizer's
// probing policy and by tests.
func CanSeeProject(identity Identity, project *models.Project) bool {
	switch identity.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return project.ManagerID == identity.UserID
	default:
		return project.HasTeamMember(identity.UserID)
	}
}

// CanSeeTask mirrors TaskScopeFor for a single task. The task's parent project
// must be supplied for the manager case; a nil project means the parent could
// not be resolved and only admins retain visibility.
func CanSeeTask(identity Identity, task *models.Task, project *models.Project) bool {
	switch identity.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return project != nil && project.ManagerID == identity.UserID
	default:
		return task.AssignedToID == identity.UserID
	}
}
