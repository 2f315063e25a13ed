// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account provider tags. Providers arrive as opaque strings from the
// identity layer and are matched against this fixed set.
const (
	ProviderLocal  = "email"
	ProviderGoogle = "google"
)

// ValidProvider reports whether the tag names a supported provider.
func ValidProvider(p string) bool {
	return p == ProviderLocal || p == ProviderGoogle
}

// Account binds one external identity to a User. For local accounts the
// provider is "email" and ProviderID is the email address itself; for
// federated accounts ProviderID is the provider's subject id.
// (provider, provider_id) is unique across the collection.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"userId"`
	Provider     string             `bson:"provider" json:"provider"`
	ProviderID   string             `bson:"provider_id" json:"providerId"`
	RefreshToken string             `bson:"refresh_token,omitempty" json:"-"`
	TokenExpiry  *time.Time         `bson:"token_expiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
