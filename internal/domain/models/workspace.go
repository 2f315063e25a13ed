// internal/domain/models/workspace.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace is the tenant container for members, projects, and tasks.
//
// Owner always also holds a Member record with the OWNER role in this
// workspace; that pairing is established transactionally at creation
// time rather than by a standing database constraint.
type Workspace struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	InviteCode  string             `bson:"invite_code" json:"inviteCode"` // unique, opaque join token

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
