package repositories

import (
	"context"
	"fmt"
	"sync"

	"taskflow/backend/authz"
	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectInMemRepository struct {
	mu       sync.RWMutex
	projects []models.Project
}

func NewProjectInMemRepository() *ProjectInMemRepository {
	return &ProjectInMemRepository{}
}

func (r *ProjectInMemRepository) Create(ctx context.Context, project models.Project) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	r.projects = append(r.projects, project)
	return &project, nil
}

func (r *ProjectInMemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.projects {
		if p.ID == id {
			project := p
			return &project, nil
		}
	}
	return nil, fmt.Errorf("%w: project %s", authz.ErrNotFound, id.Hex())
}

func (r *ProjectInMemRepository) FindProjects(ctx context.Context, scope authz.ProjectScope) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	projects := []models.Project{}
	for _, p := range r.projects {
		switch {
		case scope.All:
			projects = append(projects, p)
		case scope.ManagerID != nil && p.ManagerID == *scope.ManagerID:
			projects = append(projects, p)
		case scope.MemberID != nil && p.HasTeamMember(*scope.MemberID):
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func (r *ProjectInMemRepository) Update(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.projects {
		if p.ID == project.ID {
			r.projects[i] = *project
			return nil
		}
	}
	return fmt.Errorf("%w: project %s", authz.ErrNotFound, project.ID.Hex())
}

func (r *ProjectInMemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.projects {
		if p.ID == id {
			r.projects = append(r.projects[:i], r.projects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: project %s", authz.ErrNotFound, id.Hex())
}

func (r *ProjectInMemRepository) CountManagedBy(ctx context.Context, managerID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, p := range r.projects {
		if p.ManagerID == managerID {
			count++
		}
	}
	return count, nil
}

func (r *ProjectInMemRepository) DetachMember(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.projects {
		team := r.projects[i].Team[:0:0]
		for _, id := range r.projects[i].Team {
			if id != userID {
				team = append(team, id)
			}
		}
		r.projects[i].Team = team
	}
	return nil
}
