// internal/app/store/provision/provision.go
//
// Package provision turns a first-time login or registration into a
// fully-formed User + Account + owning Workspace + Member(OWNER), as
// one all-or-nothing transaction. A failure at any step leaves no
// partial identity behind.
package provision

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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	workspacestore "github.com/dalemusser/crewdeck/internal/app/store/workspaces"
)

// IdentityPolicy controls how a federated login resolves to a User.
type IdentityPolicy string

const (
	// MergeByEmail resolves by email regardless of provider, so a
	// federated login sharing an email with an existing local account
	// silently reuses that User. This matches the original system's
	// observed behavior and is the default.
	MergeByEmail IdentityPolicy = "merge-by-email"

	// StrictByProvider resolves by (provider, provider_id) first and
	// refuses to attach a new provider to an existing user's email,
	// failing with Conflict instead of silently merging identities.
	StrictByProvider IdentityPolicy = "strict-by-provider"
)

// ValidPolicy reports whether p names a known identity policy.
func ValidPolicy(p IdentityPolicy) bool {
	return p == MergeByEmail || p == StrictByProvider
}

// DefaultWorkspaceName is the template name for the workspace created
// during provisioning.
const DefaultWorkspaceName = "My Workspace"

// Profile is what the identity layer hands us for a federated login.
type Profile struct {
	Provider    string
	ProviderID  string
	DisplayName string
	Email       string
	Picture     string
}

type Service struct {
	db         *mongo.Database
	users      *mongo.Collection
	accounts   *mongo.Collection
	workspaces *mongo.Collection
	members    *mongo.Collection
	roles      *mongo.Collection
	policy     IdentityPolicy
	log        *zap.Logger
}

func New(db *mongo.Database, policy IdentityPolicy, log *zap.Logger) *Service {
	if !ValidPolicy(policy) {
		policy = MergeByEmail
	}
	return &Service{
		db:         db,
		users:      db.Collection("users"),
		accounts:   db.Collection("accounts"),
		workspaces: db.Collection("workspaces"),
		members:    db.Collection("members"),
		roles:      db.Collection("roles"),
		policy:     policy,
		log:        log,
	}
}

// RegisterLocal provisions a local (email+password) user. An email that
// is already registered fails BadRequest before anything is created; a
// race past that check loses to the unique email index and surfaces as
// Conflict. Returns the created user with the password field cleared.
func (s *Service) RegisterLocal(ctx context.Context, name, email, password string) (models.User, error) {
	email = normalizeEmail(email)

	if err := s.users.FindOne(ctx, bson.M{"email": email}).Err(); err == nil {
		return models.User{}, apperror.BadRequest(apperror.CodeEmailAlreadyExists,
			"email is already registered")
	} else if err != mongo.ErrNoDocuments {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		u, err := s.createUser(ctx, name, email, string(hash), "")
		if err != nil {
			return err
		}
		if err := s.createAccount(ctx, u.ID, models.ProviderLocal, email); err != nil {
			return err
		}
		if err := s.bootstrapWorkspace(ctx, &u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email))
	return user.OmitPassword(), nil
}

// LoginOrCreateAccount provisions (or resolves) a user for a federated
// login. Resolution follows the configured identity policy; when no
// user exists the full bootstrap runs in one transaction. Returns the
// resolved user with the password field cleared.
func (s *Service) LoginOrCreateAccount(ctx context.Context, p Profile) (models.User, error) {
	if !models.ValidProvider(strings.ToLower(p.Provider)) {
		return models.User{}, apperror.BadRequest(apperror.CodeValidation,
			"unsupported identity provider: "+p.Provider)
	}
	email := normalizeEmail(p.Email)

	if s.policy == StrictByProvider {
		return s.loginStrict(ctx, p, email)
	}
	return s.loginMergeByEmail(ctx, p, email)
}

// loginMergeByEmail keys identity resolution on email, not
// provider+providerId: a user arriving via multiple providers sharing
// one email is merged into a single User record.
func (s *Service) loginMergeByEmail(ctx context.Context, p Profile, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == nil {
		return user.OmitPassword(), nil
	}
	if err != mongo.ErrNoDocuments {
		return models.User{}, err
	}
	return s.provisionFederated(ctx, p, email)
}

// loginStrict resolves by (provider, provider_id); an email collision
// with a differently-provisioned user is a Conflict, never a merge.
func (s *Service) loginStrict(ctx context.Context, p Profile, email string) (models.User, error) {
	var acct models.Account
	err := s.accounts.FindOne(ctx, bson.M{
		"provider":    strings.ToLower(p.Provider),
		"provider_id": strings.ToLower(p.ProviderID),
	}).Decode(&acct)
	if err == nil {
		var user models.User
		if err := s.users.FindOne(ctx, bson.M{"_id": acct.UserID}).Decode(&user); err != nil {
			return models.User{}, err
		}
		return user.OmitPassword(), nil
	}
	if err != mongo.ErrNoDocuments {
		return models.User{}, err
	}

	if err := s.users.FindOne(ctx, bson.M{"email": email}).Err(); err == nil {
		return models.User{}, apperror.Conflict(apperror.CodeIdentityPolicyClash,
			"a user with this email already exists under a different identity provider", nil)
	} else if err != mongo.ErrNoDocuments {
		return models.User{}, err
	}

	return s.provisionFederated(ctx, p, email)
}

func (s *Service) provisionFederated(ctx context.Context, p Profile, email string) (models.User, error) {
	var user models.User
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		u, err := s.createUser(ctx, p.DisplayName, email, "", p.Picture)
		if err != nil {
			return err
		}
		if err := s.createAccount(ctx, u.ID, p.Provider, p.ProviderID); err != nil {
			return err
		}
		if err := s.bootstrapWorkspace(ctx, &u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info("federated user provisioned",
		zap.String("user_id", user.ID.Hex()),
		zap.String("provider", strings.ToLower(p.Provider)))
	return user.OmitPassword(), nil
}

// VerifyLocal is the read-only local-login check: locate the local
// account by email, load the bound user, compare the password. A
// missing account fails NotFound; a wrong password fails Unauthorized.
func (s *Service) VerifyLocal(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)

	var acct models.Account
	err := s.accounts.FindOne(ctx, bson.M{
		"provider":    models.ProviderLocal,
		"provider_id": email,
	}).Decode(&acct)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, apperror.NotFound(apperror.CodeResourceNotFound,
				"invalid email or password")
		}
		return models.User{}, err
	}

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": acct.UserID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, apperror.NotFound(apperror.CodeResourceNotFound,
				"user not found for this account")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, apperror.Unauthorized(apperror.CodeInvalidCredentials,
			"invalid email or password")
	}

	return user.OmitPassword(), nil
}

/* ---------------------------- internals ---------------------------- */

func (s *Service) createUser(ctx context.Context, name, email, passwordHash, picture string) (models.User, error) {
	now := time.Now().UTC()
	u := models.User{
		ID:             primitive.NewObjectID(),
		Name:           name,
		Email:          email,
		Password:       passwordHash,
		ProfilePicture: picture,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, apperror.Conflict(apperror.CodeEmailAlreadyExists,
				"a user with this email already exists", err)
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Service) createAccount(ctx context.Context, userID primitive.ObjectID, provider, providerID string) error {
	acct := models.Account{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Provider:   strings.ToLower(provider),
		ProviderID: strings.ToLower(providerID),
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.accounts.InsertOne(ctx, acct); err != nil {
		if wafflemongo.IsDup(err) {
			return apperror.Conflict(apperror.CodeDuplicateKey,
				"an account for this identity already exists", err)
		}
		return err
	}
	return nil
}

// bootstrapWorkspace creates the user's owning workspace, the
// Member(OWNER) record, and sets current_workspace. A missing OWNER
// role is a fatal misconfiguration (seeding skipped), not a user error.
func (s *Service) bootstrapWorkspace(ctx context.Context, u *models.User) error {
	var ownerRole models.Role
	if err := s.roles.FindOne(ctx, bson.M{"name": authz.RoleOwner}).Decode(&ownerRole); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperror.NotFound(apperror.CodeRoleNotFound, "owner role not found")
		}
		return err
	}

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:         primitive.NewObjectID(),
		Name:       DefaultWorkspaceName,
		NameCI:     text.Fold(DefaultWorkspaceName),
		Owner:      u.ID,
		InviteCode: workspacestore.NewInviteCode(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.workspaces.InsertOne(ctx, ws); err != nil {
		return err
	}

	m := models.Member{
		ID:          primitive.NewObjectID(),
		UserID:      u.ID,
		WorkspaceID: ws.ID,
		RoleID:      ownerRole.ID,
		JoinedAt:    now,
	}
	if _, err := s.members.InsertOne(ctx, m); err != nil {
		return err
	}

	if _, err := s.users.UpdateByID(ctx, u.ID, bson.M{
		"$set": bson.M{"current_workspace": ws.ID, "updated_at": now},
	}); err != nil {
		return err
	}

	u.CurrentWorkspace = &ws.ID
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
