// internal/app/store/accounts/accountstore.go
package accountstore

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
	return &Store{c: db.Collection("accounts")}
}

// Create inserts an account binding one external identity to a user.
// Provider and provider id are normalized to lowercase before storage.
// A duplicate (provider, provider_id) pair surfaces as Conflict.
func (s *Store) Create(ctx context.Context, acct models.Account) (models.Account, error) {
	acct.ID = primitive.NewObjectID()
	acct.Provider = strings.ToLower(acct.Provider)
	acct.ProviderID = strings.ToLower(acct.ProviderID)
	acct.CreatedAt = time.Now().UTC()

	_, err := s.c.InsertOne(ctx, acct)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, apperror.Conflict(apperror.CodeDuplicateKey,
				"an account for this identity already exists", err)
		}
		return models.Account{}, err
	}
	return acct, nil
}

// GetByProvider resolves an account by its external identity.
func (s *Store) GetByProvider(ctx context.Context, provider, providerID string) (models.Account, error) {
	var acct models.Account
	err := s.c.FindOne(ctx, bson.M{
		"provider":    strings.ToLower(provider),
		"provider_id": strings.ToLower(providerID),
	}).Decode(&acct)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Account{}, apperror.NotFound(apperror.CodeResourceNotFound, "account not found")
		}
		return models.Account{}, err
	}
	return acct, nil
}

// ListByUser returns all identity bindings for a user.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Account, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var accts []models.Account
	if err := cur.All(ctx, &accts); err != nil {
		return nil, err
	}
	return accts, nil
}

// DeleteByUser removes all accounts bound to a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
