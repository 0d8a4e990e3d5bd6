package authz

import (
	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the authenticated caller as resolved by the HTTP layer. It is
// threaded explicitly through every call into the core, never read from
// ambient request state.
type Identity struct {
	UserID primitive.ObjectID
	Role   models.Role
}
