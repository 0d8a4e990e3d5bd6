package repositories

import (
	"context"
	"errors"
	"fmt"

	"taskflow/backend/authz"
	"taskflow/backend/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TaskMongoRepository struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

func NewTaskMongoRepository(collection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *TaskMongoRepository {
	return &TaskMongoRepository{collection: collection, breaker: breaker}
}

func (r *TaskMongoRepository) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.InsertOne(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.(*mongo.InsertOneResult).InsertedID.(primitive.ObjectID)
	return &task, nil
}

func (r *TaskMongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		var task models.Task
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("%w: task %s", authz.ErrNotFound, id.Hex())
			}
			return nil, err
		}
		return &task, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Task), nil
}

func (r *TaskMongoRepository) FindTasks(ctx context.Context, scope authz.TaskScope) ([]models.Task, error) {
	filter := bson.M{}
	switch {
	case scope.All:
	case scope.AssigneeID != nil:
		filter["assignedTo"] = *scope.AssigneeID
	case scope.ProjectIDs != nil:
		// An empty managed set must match nothing, not everything.
		filter["projectId"] = bson.M{"$in": scope.ProjectIDs}
	default:
		return []models.Task{}, nil
	}

	result, err := execute(r.breaker, func() (interface{}, error) {
		cursor, err := r.collection.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
		}
		defer cursor.Close(ctx)

		tasks := []models.Task{}
		if err := cursor.All(ctx, &tasks); err != nil {
			return nil, fmt.Errorf("failed to decode tasks: %v", err)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Task), nil
}

func (r *TaskMongoRepository) Update(ctx context.Context, task *models.Task) error {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	})
	if err != nil {
		return fmt.Errorf("failed to update task: %v", err)
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return fmt.Errorf("%w: task %s", authz.ErrNotFound, task.ID.Hex())
	}
	return nil
}

func (r *TaskMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.DeleteOne(ctx, bson.M{"_id": id})
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.(*mongo.DeleteResult).DeletedCount == 0 {
		return fmt.Errorf("%w: task %s", authz.ErrNotFound, id.Hex())
	}
	return nil
}

func (r *TaskMongoRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.DeleteMany(ctx, bson.M{"projectId": projectID})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks for project: %v", err)
	}
	return result.(*mongo.DeleteResult).DeletedCount, nil
}
