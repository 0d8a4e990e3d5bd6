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

type UserMongoRepository struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

func NewUserMongoRepository(collection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *UserMongoRepository {
	return &UserMongoRepository{collection: collection, breaker: breaker}
}

func (r *UserMongoRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.InsertOne(ctx, user)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: user with email %s already exists", authz.ErrConflict, user.Email)
		}
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	user.ID = result.(*mongo.InsertOneResult).InsertedID.(primitive.ObjectID)
	return &user, nil
}

func (r *UserMongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		var user models.User
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("%w: user %s", authz.ErrNotFound, id.Hex())
			}
			return nil, err
		}
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

func (r *UserMongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		var user models.User
		if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("%w: user with email %s", authz.ErrNotFound, email)
			}
			return nil, err
		}
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

func (r *UserMongoRepository) GetAll(ctx context.Context) ([]models.User, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		cursor, err := r.collection.Find(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve users: %v", err)
		}
		defer cursor.Close(ctx)

		users := []models.User{}
		if err := cursor.All(ctx, &users); err != nil {
			return nil, fmt.Errorf("failed to decode users: %v", err)
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.User), nil
}

func (r *UserMongoRepository) Update(ctx context.Context, user *models.User) error {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user with email %s already exists", authz.ErrConflict, user.Email)
		}
		return fmt.Errorf("failed to update user: %v", err)
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", authz.ErrNotFound, user.ID.Hex())
	}
	return nil
}

func (r *UserMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.DeleteOne(ctx, bson.M{"_id": id})
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	if result.(*mongo.DeleteResult).DeletedCount == 0 {
		return fmt.Errorf("%w: user %s", authz.ErrNotFound, id.Hex())
	}
	return nil
}

func (r *UserMongoRepository) Count(ctx context.Context) (int64, error) {
	result, err := execute(r.breaker, func() (interface{}, error) {
		return r.collection.CountDocuments(ctx, bson.M{})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %v", err)
	}
	return result.(int64), nil
}
