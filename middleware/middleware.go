package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskflow/backend/authz"
	"taskflow/backend/logging"
	"taskflow/backend/models"
	"taskflow/backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const identityKey contextKey = "identity"

// Blacklist answers whether a token has been revoked by logout.
type Blacklist interface {
	IsBlacklisted(token string) bool
}

// Auth validates the Bearer token and puts the resolved authz.Identity into
// the request context. Handlers pull it out with IdentityFromContext and pass
// it explicitly into the core; nothing downstream reads request state.
func Auth(blacklist Blacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if blacklist != nil && blacklist.IsBlacklisted(tokenStr) {
				logging.Logger.Warnf("Event ID: AUTH_REVOKED_TOKEN, Description: Revoked token used for request to %s %s", r.Method, r.URL.Path)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			role, ok := models.ParseRole(claims.Role)
			if !ok {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			identity := authz.Identity{UserID: userID, Role: role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}

// IdentityFromContext returns the identity Auth resolved for this request.
func IdentityFromContext(ctx context.Context) (authz.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(authz.Identity)
	return identity, ok
}

// WithIdentity is used by tests to run handlers without the HTTP middleware.
func WithIdentity(ctx context.Context, identity authz.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
