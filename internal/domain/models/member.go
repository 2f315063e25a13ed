// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member joins a User to a Workspace with a Role. At most one Member
// exists per (user_id, workspace_id); a unique index enforces this so a
// racing duplicate insert fails instead of double-joining.
type Member struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspaceId"`
	RoleID      primitive.ObjectID `bson:"role_id" json:"roleId"`
	JoinedAt    time.Time          `bson:"joined_at" json:"joinedAt"`
}

// MemberWithRole is a Member with its role name eagerly resolved,
// used by the membership directory and member listings.
type MemberWithRole struct {
	Member   `bson:",inline"`
	RoleName string `bson:"role_name" json:"roleName"`
}

// MemberDetail adds the joined user's public profile fields, for the
// workspace member listing.
type MemberDetail struct {
	MemberWithRole `bson:",inline"`
	UserName       string `bson:"user_name" json:"userName"`
	UserEmail      string `bson:"user_email" json:"userEmail"`
	UserPicture    string `bson:"user_picture,omitempty" json:"userPicture,omitempty"`
}
