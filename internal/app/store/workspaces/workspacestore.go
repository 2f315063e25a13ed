// internal/app/store/workspaces/workspacestore.go
//
// Package workspacestore is the workspace lifecycle manager. Creation
// and deletion are multi-collection operations (members, projects,
// tasks, the owner's current-workspace pointer), so the store holds
// handles to every collection it must keep consistent and wraps each
// logical unit in a transaction.
package workspacestore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/txn"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Store struct {
	db       *mongo.Database
	c        *mongo.Collection
	users    *mongo.Collection
	members  *mongo.Collection
	roles    *mongo.Collection
	projects *mongo.Collection
	tasks    *mongo.Collection
	log      *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:       db,
		c:        db.Collection("workspaces"),
		users:    db.Collection("users"),
		members:  db.Collection("members"),
		roles:    db.Collection("roles"),
		projects: db.Collection("projects"),
		tasks:    db.Collection("tasks"),
		log:      log,
	}
}

// NewInviteCode returns a fresh opaque join token.
func NewInviteCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// CreateWithOwner creates a workspace plus its OWNER member record and
// points the owner's current workspace at it, as one transaction. An
// orphan workspace without its owner member is a correctness bug, so a
// failure at any step rolls back the lot.
func (s *Store) CreateWithOwner(ctx context.Context, ownerID primitive.ObjectID, name, description string) (models.Workspace, error) {
	var created models.Workspace

	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.users.FindOne(ctx, bson.M{"_id": ownerID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return apperror.NotFound(apperror.CodeResourceNotFound, "user not found")
			}
			return err
		}

		var ownerRole models.Role
		if err := s.roles.FindOne(ctx, bson.M{"name": authz.RoleOwner}).Decode(&ownerRole); err != nil {
			if err == mongo.ErrNoDocuments {
				// Deployment misconfiguration: seeding did not run.
				return apperror.NotFound(apperror.CodeRoleNotFound, "owner role not found")
			}
			return err
		}

		now := time.Now().UTC()
		ws := models.Workspace{
			ID:          primitive.NewObjectID(),
			Name:        name,
			NameCI:      text.Fold(name),
			Description: description,
			Owner:       ownerID,
			InviteCode:  NewInviteCode(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.c.InsertOne(ctx, ws); err != nil {
			if wafflemongo.IsDup(err) {
				return apperror.Conflict(apperror.CodeDuplicateKey, "invite code collision", err)
			}
			return err
		}

		member := models.Member{
			ID:          primitive.NewObjectID(),
			UserID:      ownerID,
			WorkspaceID: ws.ID,
			RoleID:      ownerRole.ID,
			JoinedAt:    now,
		}
		if _, err := s.members.InsertOne(ctx, member); err != nil {
			return err
		}

		if _, err := s.users.UpdateByID(ctx, ownerID, bson.M{
			"$set": bson.M{"current_workspace": ws.ID, "updated_at": now},
		}); err != nil {
			return err
		}

		created = ws
		return nil
	})
	if err != nil {
		return models.Workspace{}, err
	}
	return created, nil
}

// GetByID retrieves a workspace by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Workspace, error) {
	var ws models.Workspace
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ws)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Workspace{}, apperror.NotFound(apperror.CodeResourceNotFound, "workspace not found")
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// GetByInviteCode retrieves a workspace by its invite code.
func (s *Store) GetByInviteCode(ctx context.Context, code string) (models.Workspace, error) {
	var ws models.Workspace
	err := s.c.FindOne(ctx, bson.M{"invite_code": code}).Decode(&ws)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Workspace{}, apperror.NotFound(apperror.CodeResourceNotFound, "invalid invite code")
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// ListByIDs returns the workspaces for the given ids.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Workspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Workspace
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update renames/redescribes a workspace. No cascading effects. Empty
// fields keep their current values (matching the source behavior).
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string) (models.Workspace, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if description != "" {
		set["description"] = description
	}

	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var ws models.Workspace
	if err := res.Decode(&ws); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Workspace{}, apperror.NotFound(apperror.CodeResourceNotFound, "workspace not found")
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// CascadeDelete removes a workspace and every dependent record as one
// transaction: projects, tasks, members, then the workspace itself,
// repairing the caller's current-workspace pointer along the way.
//
// Only the literal owner may delete — stricter than the permission
// gate, which would admit any OWNER-role member. Returns the caller's
// (possibly updated) current workspace pointer.
func (s *Store) CascadeDelete(ctx context.Context, wsID, callerID primitive.ObjectID) (*primitive.ObjectID, error) {
	var current *primitive.ObjectID

	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var ws models.Workspace
		if err := s.c.FindOne(ctx, bson.M{"_id": wsID}).Decode(&ws); err != nil {
			if err == mongo.ErrNoDocuments {
				return apperror.NotFound(apperror.CodeResourceNotFound, "workspace not found")
			}
			return err
		}

		if ws.Owner != callerID {
			return apperror.BadRequest(apperror.CodeNotWorkspaceOwner,
				"you do not have permission to delete this workspace")
		}

		var caller models.User
		if err := s.users.FindOne(ctx, bson.M{"_id": callerID}).Decode(&caller); err != nil {
			if err == mongo.ErrNoDocuments {
				return apperror.NotFound(apperror.CodeResourceNotFound, "user not found")
			}
			return err
		}

		if _, err := s.projects.DeleteMany(ctx, bson.M{"workspace_id": wsID}); err != nil {
			return err
		}
		if _, err := s.tasks.DeleteMany(ctx, bson.M{"workspace_id": wsID}); err != nil {
			return err
		}
		if _, err := s.members.DeleteMany(ctx, bson.M{"workspace_id": wsID}); err != nil {
			return err
		}

		current = caller.CurrentWorkspace
		if caller.CurrentWorkspace != nil && *caller.CurrentWorkspace == wsID {
			// Repoint to any remaining membership, or clear.
			var m models.Member
			err := s.members.FindOne(ctx, bson.M{"user_id": callerID}).Decode(&m)
			switch {
			case err == nil:
				current = &m.WorkspaceID
			case err == mongo.ErrNoDocuments:
				current = nil
			default:
				return err
			}

			update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
			if current != nil {
				update["$set"].(bson.M)["current_workspace"] = *current
			} else {
				update["$unset"] = bson.M{"current_workspace": ""}
			}
			if _, err := s.users.UpdateByID(ctx, callerID, update); err != nil {
				return err
			}
		}

		if _, err := s.c.DeleteOne(ctx, bson.M{"_id": wsID}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// ChangeMemberRole replaces the role reference on the Member record for
// (wsID, memberUserID). Single-document write; atomic at the storage
// layer without an explicit transaction.
func (s *Store) ChangeMemberRole(ctx context.Context, wsID, memberUserID, roleID primitive.ObjectID) (models.Member, error) {
	if err := s.c.FindOne(ctx, bson.M{"_id": wsID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Member{}, apperror.NotFound(apperror.CodeResourceNotFound, "workspace not found")
		}
		return models.Member{}, err
	}

	var role models.Role
	if err := s.roles.FindOne(ctx, bson.M{"_id": roleID}).Decode(&role); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Member{}, apperror.NotFound(apperror.CodeRoleNotFound, "role not found")
		}
		return models.Member{}, err
	}

	res := s.members.FindOneAndUpdate(ctx,
		bson.M{"workspace_id": wsID, "user_id": memberUserID},
		bson.M{"$set": bson.M{"role_id": role.ID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var m models.Member
	if err := res.Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Member{}, apperror.NotFound(apperror.CodeResourceNotFound,
				"member not found in the workspace")
		}
		return models.Member{}, err
	}
	return m, nil
}
