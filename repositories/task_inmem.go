package repositories

import (
	"context"
	"fmt"
	"sync"

	"taskflow/backend/authz"
	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskInMemRepository struct {
	mu    sync.RWMutex
	tasks []models.Task
}

func NewTaskInMemRepository() *TaskInMemRepository {
	return &TaskInMemRepository{}
}

func (r *TaskInMemRepository) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	r.tasks = append(r.tasks, task)
	return &task, nil
}

func (r *TaskInMemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			task := t
			return &task, nil
		}
	}
	return nil, fmt.Errorf("%w: task %s", authz.ErrNotFound, id.Hex())
}

func (r *TaskInMemRepository) FindTasks(ctx context.Context, scope authz.TaskScope) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := []models.Task{}
	for _, t := range r.tasks {
		switch {
		case scope.All:
			tasks = append(tasks, t)
		case scope.AssigneeID != nil && t.AssignedToID == *scope.AssigneeID:
			tasks = append(tasks, t)
		case scope.ProjectIDs != nil && containsID(scope.ProjectIDs, t.ProjectID):
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (r *TaskInMemRepository) Update(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == task.ID {
			r.tasks[i] = *task
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", authz.ErrNotFound, task.ID.Hex())
}

func (r *TaskInMemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", authz.ErrNotFound, id.Hex())
}

func (r *TaskInMemRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tasks[:0:0]
	var removed int64
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
	return removed, nil
}
