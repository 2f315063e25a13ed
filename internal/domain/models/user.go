// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the identity record. Credentials live on Account documents;
// the Password field here is only set for local (email+password) users
// and is never serialized into API responses.
//
// CurrentWorkspace is the workspace the UI defaults to. If set, it must
// reference a workspace the user holds a Member record in; workspace
// deletion repairs it.
type User struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name             string              `bson:"name" json:"name"`
	Email            string              `bson:"email" json:"email"` // stored lowercase, unique
	Password         string              `bson:"password,omitempty" json:"-"`
	ProfilePicture   string              `bson:"profile_picture,omitempty" json:"profilePicture,omitempty"`
	IsActive         bool                `bson:"is_active" json:"isActive"`
	LastLogin        *time.Time          `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CurrentWorkspace *primitive.ObjectID `bson:"current_workspace,omitempty" json:"currentWorkspace,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// OmitPassword returns a copy safe to hand to the rendering layer.
func (u User) OmitPassword() User {
	u.Password = ""
	return u
}
