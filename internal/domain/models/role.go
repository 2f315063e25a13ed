// internal/domain/models/role.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a seeded, immutable-after-seed record mapping a role name to
// its permission set. Members reference roles by id; permission sets
// are always written explicitly from the catalog, never defaulted.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"` // unique; one of authz.RoleNames
	Permissions []string           `bson:"permissions" json:"permissions"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
