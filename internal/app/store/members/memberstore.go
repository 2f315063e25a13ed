// internal/app/store/members/memberstore.go
//
// Package memberstore is the membership directory: the single source of
// truth for (user, workspace) -> role. Every privileged operation
// resolves the caller's role here before consulting the permission
// gate.
package memberstore

import (
	"context"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c          *mongo.Collection
	workspaces *mongo.Collection
	roles      *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:          db.Collection("members"),
		workspaces: db.Collection("workspaces"),
		roles:      db.Collection("roles"),
	}
}

// ResolveRole returns the caller's role name in a workspace.
//
// A missing workspace fails NotFound; an existing workspace the user is
// not in fails Unauthorized(NotAMember) — distinct signals, so callers
// can tell "no such workspace" from "exists but you're not in it". The
// member lookup resolves the role in one aggregation round trip.
func (s *Store) ResolveRole(ctx context.Context, userID, workspaceID primitive.ObjectID) (string, error) {
	if err := s.workspaces.FindOne(ctx, bson.M{"_id": workspaceID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", apperror.NotFound(apperror.CodeResourceNotFound, "workspace not found")
		}
		return "", err
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"user_id": userID, "workspace_id": workspaceID}},
		{"$lookup": bson.M{
			"from":         "roles",
			"localField":   "role_id",
			"foreignField": "_id",
			"as":           "role",
		}},
		{"$unwind": "$role"},
		{"$project": bson.M{"role_name": "$role.name"}},
	})
	if err != nil {
		return "", err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return "", err
		}
		return "", apperror.Unauthorized(apperror.CodeNotAMember,
			"you are not a member of this workspace")
	}

	var row struct {
		RoleName string `bson:"role_name"`
	}
	if err := cur.Decode(&row); err != nil {
		return "", err
	}
	return row.RoleName, nil
}

// JoinByInviteCode turns an invite code into a new MEMBER-role
// membership and returns (workspaceID, roleName).
//
// The existence precheck gives a clean BadRequest for retries; the
// unique (user_id, workspace_id) index is what actually prevents a
// duplicate when two joins race past the check, surfacing as Conflict.
func (s *Store) JoinByInviteCode(ctx context.Context, userID primitive.ObjectID, inviteCode string) (primitive.ObjectID, string, error) {
	var ws models.Workspace
	if err := s.workspaces.FindOne(ctx, bson.M{"invite_code": inviteCode}).Decode(&ws); err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, "", apperror.NotFound(apperror.CodeResourceNotFound,
				"invalid invite code or workspace not found")
		}
		return primitive.NilObjectID, "", err
	}

	exists, err := s.Exists(ctx, userID, ws.ID)
	if err != nil {
		return primitive.NilObjectID, "", err
	}
	if exists {
		return primitive.NilObjectID, "", apperror.BadRequest(apperror.CodeAlreadyMember,
			"you are already a member of this workspace")
	}

	var memberRole models.Role
	if err := s.roles.FindOne(ctx, bson.M{"name": authz.RoleMember}).Decode(&memberRole); err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, "", apperror.NotFound(apperror.CodeRoleNotFound,
				"member role not found")
		}
		return primitive.NilObjectID, "", err
	}

	m := models.Member{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkspaceID: ws.ID,
		RoleID:      memberRole.ID,
		JoinedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return primitive.NilObjectID, "", apperror.Conflict(apperror.CodeDuplicateKey,
				"membership already exists", err)
		}
		return primitive.NilObjectID, "", err
	}

	return ws.ID, memberRole.Name, nil
}

// Exists checks for a membership row for (userID, workspaceID).
func (s *Store) Exists(ctx context.Context, userID, workspaceID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "workspace_id": workspaceID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns every membership row for a user.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByWorkspaceWithRoles returns a workspace's members with role
// names resolved, for member listings.
func (s *Store) ListByWorkspaceWithRoles(ctx context.Context, workspaceID primitive.ObjectID) ([]models.MemberWithRole, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"workspace_id": workspaceID}},
		{"$lookup": bson.M{
			"from":         "roles",
			"localField":   "role_id",
			"foreignField": "_id",
			"as":           "role",
		}},
		{"$unwind": "$role"},
		{"$addFields": bson.M{"role_name": "$role.name"}},
		{"$project": bson.M{"role": 0}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MemberWithRole
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByWorkspaceWithUsers returns a workspace's members with role
// names and the joined user's public profile fields, for the member
// listing endpoint.
func (s *Store) ListByWorkspaceWithUsers(ctx context.Context, workspaceID primitive.ObjectID) ([]models.MemberDetail, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"workspace_id": workspaceID}},
		{"$lookup": bson.M{
			"from":         "roles",
			"localField":   "role_id",
			"foreignField": "_id",
			"as":           "role",
		}},
		{"$unwind": "$role"},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}},
		{"$unwind": "$user"},
		{"$addFields": bson.M{
			"role_name":    "$role.name",
			"user_name":    "$user.name",
			"user_email":   "$user.email",
			"user_picture": "$user.profile_picture",
		}},
		{"$project": bson.M{"role": 0, "user": 0}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MemberDetail
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByWorkspace returns the member count for a workspace.
func (s *Store) CountByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"workspace_id": workspaceID})
}
