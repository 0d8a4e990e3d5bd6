package repositories

import (
	"context"

	"taskflow/backend/authz"
	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repositories return authz.ErrNotFound (wrapped) when a looked-up entity is
// absent so services and the authorizer can branch with errors.Is.

type UserRepository interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindProjects(ctx context.Context, scope authz.ProjectScope) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountManagedBy(ctx context.Context, managerID primitive.ObjectID) (int64, error)
	// DetachMember pulls the user out of every project team.
	DetachMember(ctx context.Context, userID primitive.ObjectID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	FindTasks(ctx context.Context, scope authz.TaskScope) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByProject removes every task of the project, returning how many
	// went away. Backs the project delete cascade.
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// Store adapts the three repositories to the authorizer's read view.
type Store struct {
	Users    UserRepository
	Projects ProjectRepository
	Tasks    TaskRepository
}

func (s Store) ProjectByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return s.Projects.GetByID(ctx, id)
}

func (s Store) TaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	return s.Tasks.GetByID(ctx, id)
}

func (s Store) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.Users.GetByID(ctx, id)
}
