package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskflow/backend/authz"
	"taskflow/backend/logging"
	"taskflow/backend/models"
	"taskflow/backend/repositories"
	"taskflow/backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService is the admin-facing account surface. Every mutation goes through
// the authorizer; user deletion additionally enforces the referential policy
// against projects and teams.
type UserService struct {
	users      repositories.UserRepository
	projects   repositories.ProjectRepository
	authorizer *authz.Authorizer
}

func NewUserService(users repositories.UserRepository, projects repositories.ProjectRepository, authorizer *authz.Authorizer) *UserService {
	return &UserService{users: users, projects: projects, authorizer: authorizer}
}

type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// ListUsers returns all accounts for admins and managers; the User role is not
// allowed to enumerate accounts at all.
func (s *UserService) ListUsers(ctx context.Context, identity authz.Identity) ([]models.User, error) {
	if !authz.CanListUsers(identity) {
		return nil, fmt.Errorf("%w: role %s may not list users", authz.ErrForbidden, identity.Role)
	}
	return s.users.GetAll(ctx)
}

func (s *UserService) CreateUser(ctx context.Context, identity authz.Identity, input UserInput) (*models.User, error) {
	if _, err := s.authorizer.AuthorizeCreate(identity, authz.ResourceUser); err != nil {
		return nil, err
	}

	name := html.EscapeString(strings.TrimSpace(input.Name))
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", authz.ErrValidation)
	}
	role, ok := models.ParseRole(input.Role)
	if !ok {
		return nil, fmt.Errorf("%w: invalid role %q", authz.ErrValidation, input.Role)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user, err := s.users.Create(ctx, models.User{
		Name:      name,
		Email:     email,
		Password:  hashed,
		Role:      role,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: USER_CREATED, Description: Admin %s created user %s with role %s", identity.UserID.Hex(), user.Email, user.Role)
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, identity authz.Identity, userID primitive.ObjectID, update UserUpdate) (*models.User, error) {
	_, target, err := s.authorizer.Authorize(ctx, identity, authz.OpUpdate, authz.ResourceUser, userID)
	if err != nil {
		return nil, err
	}
	user := target.User

	if update.Name != nil {
		name := html.EscapeString(strings.TrimSpace(*update.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", authz.ErrValidation)
		}
		user.Name = name
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", authz.ErrValidation)
		}
		user.Email = email
	}
	if update.Role != nil {
		role, ok := models.ParseRole(*update.Role)
		if !ok {
			return nil, fmt.Errorf("%w: invalid role %q", authz.ErrValidation, *update.Role)
		}
		user.Role = role
	}
	if update.Password != nil {
		if *update.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", authz.ErrValidation)
		}
		hashed, err := utils.HashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %v", err)
		}
		user.Password = hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. A user still managing projects cannot be
// deleted; detach or reassign the projects first. Team membership is cleaned
// up here; tasks assigned to the deleted user keep their reference and are
// surfaced for manual reassignment.
func (s *UserService) DeleteUser(ctx context.Context, identity authz.Identity, userID primitive.ObjectID) error {
	_, _, err := s.authorizer.Authorize(ctx, identity, authz.OpDelete, authz.ResourceUser, userID)
	if err != nil {
		return err
	}

	managed, err := s.projects.CountManagedBy(ctx, userID)
	if err != nil {
		return err
	}
	if managed > 0 {
		return fmt.Errorf("%w: user manages %d project(s); reassign them before deleting", authz.ErrConflict, managed)
	}

	if err := s.projects.DetachMember(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: USER_DELETED, Description: Admin %s deleted user %s", identity.UserID.Hex(), userID.Hex())
	return nil
}
