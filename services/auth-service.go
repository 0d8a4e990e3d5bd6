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
)

type AuthService struct {
	users     repositories.UserRepository
	blacklist *TokenBlacklist
}

func NewAuthService(users repositories.UserRepository, blacklist *TokenBlacklist) *AuthService {
	return &AuthService{users: users, blacklist: blacklist}
}

// Register creates a self-service account. Self-registration always yields the
// User role; privileged roles are minted only through the admin surface.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = html.EscapeString(strings.TrimSpace(name))
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", authz.ErrValidation)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user, err := s.users.Create(ctx, models.User{
		Name:      name,
		Email:     email,
		Password:  hashed,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered with role %s", user.Email, user.Role)
	return user, nil
}

// Login verifies credentials and issues a JWT carrying the user id and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || !utils.CheckPassword(user.Password, password) {
		// Same answer for unknown email and wrong password.
		return "", nil, fmt.Errorf("%w: invalid credentials", authz.ErrUnauthenticated)
	}

	token, err := utils.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %v", err)
	}
	return token, user, nil
}

// Logout revokes the presented token for the rest of its lifetime. The expiry
// comes from the token's own claim; an unparsable token is held for a full
// TTL, which can only overshoot.
func (s *AuthService) Logout(token string) {
	expiry := time.Now().Add(utils.TokenTTL)
	if claims, err := utils.ValidateToken(token); err == nil {
		expiry = claims.ExpiresAt.Time
	}
	s.blacklist.Add(token, expiry)
}

// Me returns the account backing the identity.
func (s *AuthService) Me(ctx context.Context, identity authz.Identity) (*models.User, error) {
	return s.users.GetByID(ctx, identity.UserID)
}

// EnsureDefaultUsers seeds the three default accounts when the store is empty,
// so a fresh deployment is immediately usable.
func (s *AuthService) EnsureDefaultUsers(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Logger.Info("Event ID: SEED_SKIPPED, Description: Users collection already contains data, skipping auto-seed")
		return nil
	}

	defaults := []struct {
		name     string
		email    string
		password string
		role     models.Role
	}{
		{"Admin User", "admin@taskflow.com", "taskflow123", models.RoleAdmin},
		{"Manager User", "manager@taskflow.com", "manager123", models.RoleManager},
		{"Regular User", "user@taskflow.com", "user123", models.RoleUser},
	}
	for _, d := range defaults {
		hashed, err := utils.HashPassword(d.password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %v", err)
		}
		if _, err := s.users.Create(ctx, models.User{
			Name:      d.name,
			Email:     d.email,
			Password:  hashed,
			Role:      d.role,
			CreatedAt: time.Now(),
		}); err != nil {
			return fmt.Errorf("failed to seed user %s: %v", d.email, err)
		}
	}
	logging.Logger.Info("Event ID: SEED_COMPLETE, Description: Seeded default users")
	return nil
}
