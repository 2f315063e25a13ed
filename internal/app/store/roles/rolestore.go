// internal/app/store/roles/rolestore.go
package rolestore

import (
	"context"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/txn"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Store struct {
	db *mongo.Database
	c  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("roles")}
}

// GetByName looks up a seeded role. A missing role name means the
// deployment skipped seeding, which Seed at startup should have caught.
func (s *Store) GetByName(ctx context.Context, name string) (models.Role, error) {
	var role models.Role
	err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Role{}, apperror.NotFound(apperror.CodeRoleNotFound, "role "+name+" not found")
		}
		return models.Role{}, err
	}
	return role, nil
}

// GetByID retrieves a role by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	var role models.Role
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Role{}, apperror.NotFound(apperror.CodeRoleNotFound, "role not found")
		}
		return models.Role{}, err
	}
	return role, nil
}

// List returns all seeded roles.
func (s *Store) List(ctx context.Context) ([]models.Role, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var roles []models.Role
	if err := cur.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Seed reconciles the roles collection with the authz catalog. Seed
// runs on every startup, and Member rows reference roles by _id, so
// each role is upserted by name: an existing role keeps its _id and
// only its permission set is rewritten, while names that left the
// catalog are removed. The whole reconcile is one transaction, so
// readers on a replica set see either the old or the new catalog.
func (s *Store) Seed(ctx context.Context, log *zap.Logger) error {
	return txn.Run(ctx, s.db, log, func(ctx context.Context) error {
		now := time.Now().UTC()
		names := make([]string, 0, len(authz.RoleNames))
		for _, name := range authz.RoleNames {
			perms, err := authz.PermissionsFor(name)
			if err != nil {
				return err
			}
			strs := make([]string, len(perms))
			for i, p := range perms {
				strs[i] = string(p)
			}

			_, err = s.c.UpdateOne(ctx,
				bson.M{"name": name},
				bson.M{
					"$set":         bson.M{"permissions": strs, "updated_at": now},
					"$setOnInsert": bson.M{"created_at": now},
				},
				options.Update().SetUpsert(true))
			if err != nil {
				return err
			}
			names = append(names, name)
		}

		if _, err := s.c.DeleteMany(ctx, bson.M{"name": bson.M{"$nin": names}}); err != nil {
			return err
		}

		if log != nil {
			log.Info("role catalog seeded", zap.Int("roles", len(names)))
		}
		return nil
	})
}
