package authz

import "taskflow/backend/models"

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type Resource string

const (
	ResourceProject Resource = "project"
	ResourceTask    Resource = "task"
	ResourceUser    Resource = "user"
)

// Target carries the entity an update/delete decision is being made about,
// freshly re-read from the store at decision time.
type Target struct {
	Project *models.Project
	Task    *models.Task
	User    *models.User
}

// ownership is an extra predicate a role must satisfy beyond holding the role.
type ownership func(identity Identity, target Target) bool

func managesProject(identity Identity, target Target) bool {
	return target.Project != nil && target.Project.ManagerID == identity.UserID
}

func assignedToTask(identity Identity, target Target) bool {
	return target.Task != nil && target.Task.AssignedToID == identity.UserID
}

// rule describes what a role may do once the operation row matched. A nil
// mutable set means every field; otherwise updates may only touch the listed
// fields and anything else is rejected outright.
type rule struct {
	owns    ownership
	mutable []string
}

// policy is the single source of truth for mutation rights. A missing
// (resource, operation, role) cell means deny. Handlers never re-implement
// role checks; drift between endpoints is impossible by construction.
var policy = map[Resource]map[Operation]map[models.Role]rule{
	ResourceProject: {
		OpCreate: {
			models.RoleAdmin:   {},
			models.RoleManager: {},
		},
		OpUpdate: {
			models.RoleAdmin:   {},
			models.RoleManager: {owns: managesProject},
		},
		OpDelete: {
			models.RoleAdmin:   {},
			models.RoleManager: {owns: managesProject},
		},
	},
	ResourceTask: {
		OpCreate: {
			models.RoleAdmin:   {},
			models.RoleManager: {},
		},
		OpUpdate: {
			models.RoleAdmin:   {},
			models.RoleManager: {},
			models.RoleUser:    {owns: assignedToTask, mutable: []string{"status"}},
		},
		OpDelete: {
			models.RoleAdmin: {},
		},
	},
	ResourceUser: {
		OpCreate: {
			models.RoleAdmin: {},
		},
		OpUpdate: {
			models.RoleAdmin: {},
		},
		OpDelete: {
			models.RoleAdmin: {},
		},
	},
}

// Decision is the positive outcome of an authorization check.
type Decision struct {
	// MutableFields limits which fields an update may touch. Nil means
	// unrestricted.
	MutableFields []string
}

// CanMutate reports whether the decision permits touching the named field.
func (d Decision) CanMutate(field string) bool {
	if d.MutableFields == nil {
		return true
	}
	for _, f := range d.MutableFields {
		if f == field {
			return true
		}
	}
	return false
}
