package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskflow/backend/authz"
	"taskflow/backend/middleware"
	"taskflow/backend/models"
	"taskflow/backend/services"
	"taskflow/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func protectedEcho(t *testing.T, captured *authz.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		require.True(t, ok)
		*captured = identity
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthResolvesIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	token, err := utils.GenerateToken(userID.Hex(), string(models.RoleManager))
	require.NoError(t, err)

	var captured authz.Identity
	handler := middleware.Auth(services.NewTokenBlacklist())(protectedEcho(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, models.RoleManager, captured.Role)
}

func TestAuthRejectsMissingOrBadTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := middleware.Auth(services.NewTokenBlacklist())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GenerateToken(primitive.NewObjectID().Hex(), string(models.RoleUser))
	require.NoError(t, err)

	blacklist := services.NewTokenBlacklist()
	blacklist.Add(token, time.Now().Add(utils.TokenTTL))
	handler := middleware.Auth(blacklist)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsUnknownRoleClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GenerateToken(primitive.NewObjectID().Hex(), "Superuser")
	require.NoError(t, err)

	handler := middleware.Auth(services.NewTokenBlacklist())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
