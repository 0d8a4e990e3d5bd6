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

type TaskService struct {
	tasks      repositories.TaskRepository
	projects   repositories.ProjectRepository
	users      repositories.UserRepository
	authorizer *authz.Authorizer
}

func NewTaskService(tasks repositories.TaskRepository, projects repositories.ProjectRepository, users repositories.UserRepository, authorizer *authz.Authorizer) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, users: users, authorizer: authorizer}
}

type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ProjectID   string     `json:"projectId"`
	AssignedTo  string     `json:"assignedTo"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
}

type TaskUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *string    `json:"assignedTo"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
}

// ListTasks returns the tasks the identity may read. The manager scope is
// resolved against the current project set on every call.
func (s *TaskService) ListTasks(ctx context.Context, identity authz.Identity) ([]models.Task, error) {
	scope, err := authz.TaskScopeFor(ctx, identity, s.projects)
	if err != nil {
		return nil, err
	}
	return s.tasks.FindTasks(ctx, scope)
}

// CreateTask stores a new task. Both references must resolve: the project must
// exist and the assignee must be a known user.
func (s *TaskService) CreateTask(ctx context.Context, identity authz.Identity, input TaskInput) (*models.Task, error) {
	if _, err := s.authorizer.AuthorizeCreate(identity, authz.ResourceTask); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", authz.ErrValidation)
	}

	projectID, err := primitive.ObjectIDFromHex(input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project id %q", authz.ErrValidation, input.ProjectID)
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("%w: project %s does not exist", authz.ErrValidation, input.ProjectID)
	}

	assignedTo, err := primitive.ObjectIDFromHex(input.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid assignee id %q", authz.ErrValidation, input.AssignedTo)
	}
	if _, err := s.users.GetByID(ctx, assignedTo); err != nil {
		return nil, fmt.Errorf("%w: assignee %s does not exist", authz.ErrValidation, input.AssignedTo)
	}

	status := models.StatusTodo
	if input.Status != "" {
		parsed, ok := models.ParseTaskStatus(input.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", authz.ErrValidation, input.Status)
		}
		status = parsed
	}
	priority := models.PriorityMedium
	if input.Priority != "" {
		parsed, ok := models.ParseTaskPriority(input.Priority)
		if !ok {
			return nil, fmt.Errorf("%w: invalid priority %q", authz.ErrValidation, input.Priority)
		}
		priority = parsed
	}

	task, err := s.tasks.Create(ctx, models.Task{
		Title:        title,
		Description:  description,
		ProjectID:    projectID,
		AssignedToID: assignedTo,
		Status:       status,
		Priority:     priority,
		Deadline:     input.Deadline,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in project %s by %s", task.ID.Hex(), projectID.Hex(), identity.UserID.Hex())
	return task, nil
}

// UpdateTask applies a partial update under the decision's field restrictions.
// A caller whose role limits them to specific fields gets a hard rejection
// when the payload touches anything else; fields are never silently dropped.
func (s *TaskService) UpdateTask(ctx context.Context, identity authz.Identity, taskID primitive.ObjectID, update TaskUpdate) (*models.Task, error) {
	decision, target, err := s.authorizer.Authorize(ctx, identity, authz.OpUpdate, authz.ResourceTask, taskID)
	if err != nil {
		return nil, err
	}
	task := target.Task

	for field, set := range map[string]bool{
		"title":       update.Title != nil,
		"description": update.Description != nil,
		"assignedTo":  update.AssignedTo != nil,
		"status":      update.Status != nil,
		"priority":    update.Priority != nil,
		"deadline":    update.Deadline != nil,
	} {
		if set && !decision.CanMutate(field) {
			return nil, fmt.Errorf("%w: role %s may only change %s", authz.ErrForbidden, identity.Role, strings.Join(decision.MutableFields, ", "))
		}
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", authz.ErrValidation)
		}
		task.Title = title
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description must not be empty", authz.ErrValidation)
		}
		task.Description = description
	}
	if update.AssignedTo != nil {
		assignedTo, err := primitive.ObjectIDFromHex(*update.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid assignee id %q", authz.ErrValidation, *update.AssignedTo)
		}
		if _, err := s.users.GetByID(ctx, assignedTo); err != nil {
			return nil, fmt.Errorf("%w: assignee %s does not exist", authz.ErrValidation, *update.AssignedTo)
		}
		task.AssignedToID = assignedTo
	}
	if update.Status != nil {
		status, ok := models.ParseTaskStatus(*update.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", authz.ErrValidation, *update.Status)
		}
		task.Status = status
	}
	if update.Priority != nil {
		priority, ok := models.ParseTaskPriority(*update.Priority)
		if !ok {
			return nil, fmt.Errorf("%w: invalid priority %q", authz.ErrValidation, *update.Priority)
		}
		task.Priority = priority
	}
	if update.Deadline != nil {
		task.Deadline = update.Deadline
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a single task. Admin-only.
func (s *TaskService) DeleteTask(ctx context.Context, identity authz.Identity, taskID primitive.ObjectID) error {
	_, _, err := s.authorizer.Authorize(ctx, identity, authz.OpDelete, authz.ResourceTask, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by %s", taskID.Hex(), identity.UserID.Hex())
	return nil
}
