package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/crewdeck/internal/app/store/users"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Ada@Example.COM", "ada@example.com"},
		{"  ada@example.com  ", "ada@example.com"},
		{"ada@example.com", "ada@example.com"},
	}
	for _, tt := range tests {
		if got := userstore.NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreate_DuplicateEmailConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Name: "First", Email: "same@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Case variants collide on the normalized unique index.
	_, err := store.Create(ctx, models.User{Name: "Second", Email: "SAME@example.com"})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if apperror.CodeOf(err) != apperror.CodeEmailAlreadyExists {
		t.Errorf("expected code %s, got %s", apperror.CodeEmailAlreadyExists, apperror.CodeOf(err))
	}
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "Ada", Email: "Ada@Example.com"})
	if err != nil {
		t.Fatal(err)
	}

	u, err := store.GetByEmail(ctx, "ADA@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.ID != created.ID {
		t.Error("lookup returned a different user")
	}
}

func TestSetCurrentWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Ada", "ada@example.com")
	ws := fixtures.CreateWorkspace(ctx, user.ID, "Team")

	if err := store.SetCurrentWorkspace(ctx, user.ID, &ws.ID); err != nil {
		t.Fatalf("set: %v", err)
	}
	u, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u.CurrentWorkspace == nil || *u.CurrentWorkspace != ws.ID {
		t.Error("current workspace not set")
	}

	// nil clears the pointer entirely.
	if err := store.SetCurrentWorkspace(ctx, user.ID, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	var raw bson.M
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": user.ID}).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if _, present := raw["current_workspace"]; present {
		t.Error("current_workspace field not unset")
	}
}

func TestTouchLastLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Ada", "ada@example.com")
	if err := store.TouchLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}

	u, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u.LastLogin == nil {
		t.Error("last login not recorded")
	}
}
