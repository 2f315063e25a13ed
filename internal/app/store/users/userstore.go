// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
// Email uniqueness is case-insensitive by construction: every path in
// and out of the collection goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user. A duplicate email loses the race to the
// unique index and surfaces as Conflict, never as a second user row.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = NormalizeEmail(u.Email)
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.c.InsertOne(ctx, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, apperror.Conflict(apperror.CodeEmailAlreadyExists,
				"a user with this email already exists", err)
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID retrieves a user by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, apperror.NotFound(apperror.CodeResourceNotFound, "user not found")
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, apperror.NotFound(apperror.CodeResourceNotFound, "user not found")
		}
		return models.User{}, err
	}
	return u, nil
}

// ExistsByEmail reports whether a user with this email exists.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetCurrentWorkspace points the user's UI default at wsID, or clears
// it when wsID is nil.
func (s *Store) SetCurrentWorkspace(ctx context.Context, userID primitive.ObjectID, wsID *primitive.ObjectID) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if wsID != nil {
		set["current_workspace"] = *wsID
		_, err := s.c.UpdateByID(ctx, userID, bson.M{"$set": set})
		return err
	}
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$set":   set,
		"$unset": bson.M{"current_workspace": ""},
	})
	return err
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"last_login": now, "updated_at": now},
	})
	return err
}
