package repositories

import (
	"context"
	"fmt"
	"sync"

	"taskflow/backend/authz"
	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserInMemRepository is a slice-backed UserRepository with the same contract
// as the Mongo implementation, including the unique-email constraint.
// Insertion order is preserved.
type UserInMemRepository struct {
	mu    sync.RWMutex
	users []models.User
}

func NewUserInMemRepository() *UserInMemRepository {
	return &UserInMemRepository{}
}

func (r *UserInMemRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: user with email %s already exists", authz.ErrConflict, user.Email)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users = append(r.users, user)
	return &user, nil
}

func (r *UserInMemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", authz.ErrNotFound, id.Hex())
}

func (r *UserInMemRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user with email %s", authz.ErrNotFound, email)
}

func (r *UserInMemRepository) GetAll(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]models.User, len(r.users))
	copy(users, r.users)
	return users, nil
}

func (r *UserInMemRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", authz.ErrNotFound, user.ID.Hex())
}

func (r *UserInMemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", authz.ErrNotFound, id.Hex())
}

func (r *UserInMemRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
