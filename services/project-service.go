package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskflow/backend/authz"
	"taskflow/backend/logging"
	"taskflow/backend/models"
	"taskflow/backend/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectService struct {
	projects   repositories.ProjectRepository
	tasks      repositories.TaskRepository
	users      repositories.UserRepository
	authorizer *authz.Authorizer
}

func NewProjectService(projects repositories.ProjectRepository, tasks repositories.TaskRepository, users repositories.UserRepository, authorizer *authz.Authorizer) *ProjectService {
	return &ProjectService{projects: projects, tasks: tasks, users: users, authorizer: authorizer}
}

type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// ManagerID is accepted on the wire but never honored; the creator is
	// always the manager of record.
	ManagerID string `json:"managerId,omitempty"`
}

type ProjectUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Team        *[]string `json:"team"`
}

// ListProjects returns the projects the identity may read, nothing more.
func (s *ProjectService) ListProjects(ctx context.Context, identity authz.Identity) ([]models.Project, error) {
	return s.projects.FindProjects(ctx, authz.ProjectScopeFor(identity))
}

// CreateProject stores a project with the creator as manager of record. Any
// client-supplied managerId is discarded, so manager spoofing is impossible.
func (s *ProjectService) CreateProject(ctx context.Context, identity authz.Identity, input ProjectInput) (*models.Project, error) {
	if _, err := s.authorizer.AuthorizeCreate(identity, authz.ResourceProject); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if name == "" || description == "" {
		return nil, fmt.Errorf("%w: name and description are required", authz.ErrValidation)
	}

	project, err := s.projects.Create(ctx, models.Project{
		Name:        name,
		Description: description,
		ManagerID:   identity.UserID,
		Team:        []primitive.ObjectID{},
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created by %s", project.ID.Hex(), identity.UserID.Hex())
	return project, nil
}

// UpdateProject applies a partial update. The manager of record is immutable;
// team changes are checked against existing users.
func (s *ProjectService) UpdateProject(ctx context.Context, identity authz.Identity, projectID primitive.ObjectID, update ProjectUpdate) (*models.Project, error) {
	_, target, err := s.authorizer.Authorize(ctx, identity, authz.OpUpdate, authz.ResourceProject, projectID)
	if err != nil {
		return nil, err
	}
	project := target.Project

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", authz.ErrValidation)
		}
		project.Name = name
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description must not be empty", authz.ErrValidation)
		}
		project.Description = description
	}
	if update.Team != nil {
		team := make([]primitive.ObjectID, 0, len(*update.Team))
		for _, raw := range *update.Team {
			memberID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid team member id %q", authz.ErrValidation, raw)
			}
			if _, err := s.users.GetByID(ctx, memberID); err != nil {
				return nil, fmt.Errorf("%w: team member %s does not exist", authz.ErrValidation, raw)
			}
			team = append(team, memberID)
		}
		project.Team = team
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the project and cascades to its tasks in the same
// logical operation. Tasks go first so a failure cannot orphan them behind a
// deleted parent.
func (s *ProjectService) DeleteProject(ctx context.Context, identity authz.Identity, projectID primitive.ObjectID) error {
	_, _, err := s.authorizer.Authorize(ctx, identity, authz.OpDelete, authz.ResourceProject, projectID)
	if err != nil {
		return err
	}

	removed, err := s.tasks.DeleteByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted by %s, %d task(s) cascaded", projectID.Hex(), identity.UserID.Hex(), removed)
	return nil
}
