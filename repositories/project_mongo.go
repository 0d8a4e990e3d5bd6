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

type ProjectMongoRepository struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

func NewProjectMongoRepository(collection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *ProjectMongoRepository {
	return &ProjectMongoRepository{collection: collection, breaker: breaker}
}

func (r *ProjectMongoRepository) Create(ctx context.Context, project models.Project) (*models.Project, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.InsertOne(ctx, project)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %v", err)
	}
	project.ID = result.(*mongo.InsertOneResult).InsertedID.(primitive.ObjectID)
	return &project, nil
}

func (r *ProjectMongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		var project models.Project
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("%w: project %s", authz.ErrNotFound, id.Hex())
			}
			return nil, err
		}
		return &project, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Project), nil
}

// FindProjects compiles a visibility scope into a Mongo filter. The scope is
// the only filter callers can supply, so nothing outside it can leak.
func (r *ProjectMongoRepository) FindProjects(ctx context.Context, scope authz.ProjectScope) ([]models.Project, error) {
	filter := bson.M{}
	switch {
	case scope.All:
	case scope.ManagerID != nil:
		filter["manager_id"] = *scope.ManagerID
	case scope.MemberID != nil:
		filter["team"] = *scope.MemberID
	default:
		return []models.Project{}, nil
	}

	result, err := execute(r.breaker, func() (interface{}, error) {
		cursor, err := r.collection.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve projects: %v", err)
		}
		defer cursor.Close(ctx)

		projects := []models.Project{}
		if err := cursor.All(ctx, &projects); err != nil {
			return nil, fmt.Errorf("failed to decode projects: %v", err)
		}
		return projects, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Project), nil
}

func (r *ProjectMongoRepository) Update(ctx context.Context, project *models.Project) error {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project)
	})
	if err != nil {
		return fmt.Errorf("failed to update project: %v", err)
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return fmt.Errorf("%w: project %s", authz.ErrNotFound, project.ID.Hex())
	}
	return nil
}

func (r *ProjectMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.DeleteOne(ctx, bson.M{"_id": id})
	})
	if err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	if result.(*mongo.DeleteResult).DeletedCount == 0 {
		return fmt.Errorf("%w: project %s", authz.ErrNotFound, id.Hex())
	}
	return nil
}

func (r *ProjectMongoRepository) CountManagedBy(ctx context.Context, managerID primitive.ObjectID) (int64, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.CountDocuments(ctx, bson.M{"manager_id": managerID})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %v", err)
	}
	return result.(int64), nil
}

func (r *ProjectMongoRepository) DetachMember(ctx context.Context, userID primitive.ObjectID) error {
	_, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.UpdateMany(ctx, bson.M{"team": userID}, bson.M{"$pull": bson.M{"team": userID}})
	})
	if err != nil {
		return fmt.Errorf("failed to detach member from project teams: %v", err)
	}
	return nil
}
