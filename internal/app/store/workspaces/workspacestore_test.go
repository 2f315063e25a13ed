package workspacestore_test

import (
	"testing"

	workspacestore "github.com/dalemusser/crewdeck/internal/app/store/workspaces"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestNewInviteCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := workspacestore.NewInviteCode()
		if len(code) != 8 {
			t.Fatalf("invite code %q has length %d", code, len(code))
		}
		if seen[code] {
			t.Fatalf("invite code %q repeated", code)
		}
		seen[code] = true
	}
}

func TestCreateWithOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")

	ws, err := store.CreateWithOwner(ctx, owner.ID, "Engineering", "the builders")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ws.InviteCode == "" {
		t.Error("no invite code")
	}
	if ws.Owner != owner.ID {
		t.Error("owner not recorded")
	}

	// OWNER membership exists.
	if n := fixtures.Count(ctx, "members", bson.M{
		"user_id":      owner.ID,
		"workspace_id": ws.ID,
		"role_id":      roles[authz.RoleOwner].ID,
	}); n != 1 {
		t.Errorf("expected 1 OWNER membership, got %d", n)
	}

	// Creator's current workspace points at the new workspace.
	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": owner.ID}).Decode(&u); err != nil {
		t.Fatal(err)
	}
	if u.CurrentWorkspace == nil || *u.CurrentWorkspace != ws.ID {
		t.Error("current workspace not updated")
	}
}

func TestCreateWithOwner_MissingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.SeedRoles(ctx)

	_, err := store.CreateWithOwner(ctx, primitive.NewObjectID(), "Ghost", "")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected NotFound for missing user, got %v", err)
	}
	if n := fixtures.Count(ctx, "workspaces", bson.M{}); n != 0 {
		t.Errorf("workspace created for missing user, count=%d", n)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if apperror.CodeOf(err) != apperror.CodeResourceNotFound {
		t.Fatalf("expected %s, got %v", apperror.CodeResourceNotFound, err)
	}
}

func TestUpdate_KeepsUnsetFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	ws, err := store.CreateWithOwner(ctx, owner.ID, "Before", "original description")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := store.Update(ctx, ws.ID, "After", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "After" {
		t.Errorf("name = %s", updated.Name)
	}
	if updated.Description != "original description" {
		t.Errorf("empty description must keep prior value, got %q", updated.Description)
	}
}

func TestCascadeDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	other := fixtures.CreateUser(ctx, "Other", "other@example.com")

	// Two workspaces so the pointer repair has somewhere to land.
	keep, err := store.CreateWithOwner(ctx, owner.ID, "Keep", "")
	if err != nil {
		t.Fatal(err)
	}
	doomed, err := store.CreateWithOwner(ctx, owner.ID, "Doomed", "")
	if err != nil {
		t.Fatal(err)
	}
	fixtures.CreateMember(ctx, other.ID, doomed.ID, roles[authz.RoleMember].ID)

	project := fixtures.CreateProject(ctx, doomed.ID, owner.ID, "Migration")
	fixtures.CreateTask(ctx, doomed.ID, project.ID, owner.ID, "Write plan", models.TaskStatusTodo)
	fixtures.CreateTask(ctx, doomed.ID, project.ID, owner.ID, "Execute", models.TaskStatusDone)

	current, err := store.CascadeDelete(ctx, doomed.ID, owner.ID)
	if err != nil {
		t.Fatalf("cascade delete: %v", err)
	}

	// Everything scoped to the workspace is gone.
	for _, coll := range []string{"projects", "tasks", "members"} {
		if n := fixtures.Count(ctx, coll, bson.M{"workspace_id": doomed.ID}); n != 0 {
			t.Errorf("%s: %d rows survived the cascade", coll, n)
		}
	}
	if n := fixtures.Count(ctx, "workspaces", bson.M{"_id": doomed.ID}); n != 0 {
		t.Error("workspace row survived")
	}

	// The untouched workspace is intact.
	if n := fixtures.Count(ctx, "members", bson.M{"workspace_id": keep.ID}); n != 1 {
		t.Errorf("unrelated workspace lost members, count=%d", n)
	}

	// The caller's pointer was repaired onto a remaining membership.
	if current == nil || *current != keep.ID {
		t.Errorf("current workspace not repaired to remaining membership, got %v", current)
	}
	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": owner.ID}).Decode(&u); err != nil {
		t.Fatal(err)
	}
	if u.CurrentWorkspace == nil || *u.CurrentWorkspace != keep.ID {
		t.Error("stored current workspace not repaired")
	}
}

func TestCascadeDelete_LastWorkspaceClearsPointer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Solo", "solo@example.com")
	only, err := store.CreateWithOwner(ctx, owner.ID, "Only", "")
	if err != nil {
		t.Fatal(err)
	}

	current, err := store.CascadeDelete(ctx, only.ID, owner.ID)
	if err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	if current != nil {
		t.Errorf("expected nil current workspace, got %v", current)
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": owner.ID}).Decode(&u); err != nil {
		t.Fatal(err)
	}
	if u.CurrentWorkspace != nil {
		t.Error("current workspace not cleared")
	}
}

func TestCascadeDelete_NotOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	intruder := fixtures.CreateUser(ctx, "Intruder", "intruder@example.com")

	ws, err := store.CreateWithOwner(ctx, owner.ID, "Fortress", "")
	if err != nil {
		t.Fatal(err)
	}
	// Even an OWNER-role member who is not the literal owner is refused.
	fixtures.CreateMember(ctx, intruder.ID, ws.ID, roles[authz.RoleOwner].ID)

	_, err = store.CascadeDelete(ctx, ws.ID, intruder.ID)
	if apperror.KindOf(err) != apperror.KindBadRequest {
		t.Fatalf("expected BadRequest, got %v", err)
	}
	if apperror.CodeOf(err) != apperror.CodeNotWorkspaceOwner {
		t.Errorf("expected code %s, got %s", apperror.CodeNotWorkspaceOwner, apperror.CodeOf(err))
	}

	if n := fixtures.Count(ctx, "workspaces", bson.M{"_id": ws.ID}); n != 1 {
		t.Error("workspace deleted by non-owner")
	}
}

func TestCascadeDelete_MissingWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.CascadeDelete(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestChangeMemberRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := workspacestore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")

	ws, err := store.CreateWithOwner(ctx, owner.ID, "Team", "")
	if err != nil {
		t.Fatal(err)
	}
	fixtures.CreateMember(ctx, member.ID, ws.ID, roles[authz.RoleMember].ID)

	updated, err := store.ChangeMemberRole(ctx, ws.ID, member.ID, roles[authz.RoleAdmin].ID)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.RoleID != roles[authz.RoleAdmin].ID {
		t.Error("role not updated")
	}

	// Still exactly one membership row for the pair.
	if n := fixtures.Count(ctx, "members", bson.M{"user_id": member.ID, "workspace_id": ws.ID}); n != 1 {
		t.Errorf("expected 1 membership, got %d", n)
	}

	// Unknown role id fails NotFound without touching the member.
	_, err = store.ChangeMemberRole(ctx, ws.ID, member.ID, primitive.NewObjectID())
	if apperror.CodeOf(err) != apperror.CodeRoleNotFound {
		t.Errorf("expected %s, got %v", apperror.CodeRoleNotFound, err)
	}

	// Non-member target fails NotFound.
	stranger := fixtures.CreateUser(ctx, "Stranger", "stranger@example.com")
	_, err = store.ChangeMemberRole(ctx, ws.ID, stranger.ID, roles[authz.RoleAdmin].ID)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("expected NotFound for non-member, got %v", err)
	}
}
