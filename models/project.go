package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	ManagerID   primitive.ObjectID   `bson:"manager_id" json:"managerId"`
	Team        []primitive.ObjectID `bson:"team" json:"team"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// HasTeamMember reports whether the given user is on the project team.
func (p *Project) HasTeamMember(userID primitive.ObjectID) bool {
	for _, id := range p.Team {
		if id == userID {
			return true
		}
	}
	return false
}
