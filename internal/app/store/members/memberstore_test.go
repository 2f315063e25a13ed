package memberstore_test

import (
	"testing"

	memberstore "github.com/dalemusser/crewdeck/internal/app/store/members"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	outsider := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")

	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	fixtures.CreateMember(ctx, owner.ID, ws.ID, roles[authz.RoleOwner].ID)
	fixtures.CreateMember(ctx, admin.ID, ws.ID, roles[authz.RoleAdmin].ID)

	got, err := store.ResolveRole(ctx, owner.ID, ws.ID)
	if err != nil || got != authz.RoleOwner {
		t.Errorf("owner role = %q, err = %v", got, err)
	}
	got, err = store.ResolveRole(ctx, admin.ID, ws.ID)
	if err != nil || got != authz.RoleAdmin {
		t.Errorf("admin role = %q, err = %v", got, err)
	}

	// Existing workspace, non-member: Unauthorized/not-a-member.
	_, err = store.ResolveRole(ctx, outsider.ID, ws.ID)
	if apperror.KindOf(err) != apperror.KindUnauthorized {
		t.Fatalf("expected Unauthorized for non-member, got %v", err)
	}
	if apperror.CodeOf(err) != apperror.CodeNotAMember {
		t.Errorf("expected code %s, got %s", apperror.CodeNotAMember, apperror.CodeOf(err))
	}

	// Missing workspace: NotFound, distinct from the membership denial.
	_, err = store.ResolveRole(ctx, owner.ID, primitive.NewObjectID())
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("expected NotFound for missing workspace, got %v", err)
	}
}

func TestJoinByInviteCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	joiner := fixtures.CreateUser(ctx, "Joiner", "joiner@example.com")

	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Open Team")
	fixtures.CreateMember(ctx, owner.ID, ws.ID, roles[authz.RoleOwner].ID)

	wsID, roleName, err := store.JoinByInviteCode(ctx, joiner.ID, ws.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if wsID != ws.ID {
		t.Error("joined the wrong workspace")
	}
	// Joining always grants MEMBER, never anything higher.
	if roleName != authz.RoleMember {
		t.Errorf("join granted role %s", roleName)
	}

	role, err := store.ResolveRole(ctx, joiner.ID, ws.ID)
	if err != nil || role != authz.RoleMember {
		t.Errorf("resolved role after join = %q, err = %v", role, err)
	}
}

func TestJoinByInviteCode_AlreadyMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	joiner := fixtures.CreateUser(ctx, "Joiner", "joiner@example.com")

	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	fixtures.CreateMember(ctx, owner.ID, ws.ID, roles[authz.RoleOwner].ID)

	if _, _, err := store.JoinByInviteCode(ctx, joiner.ID, ws.InviteCode); err != nil {
		t.Fatalf("first join: %v", err)
	}

	// A retry is a BadRequest, and no duplicate row appears.
	_, _, err := store.JoinByInviteCode(ctx, joiner.ID, ws.InviteCode)
	if apperror.KindOf(err) != apperror.KindBadRequest {
		t.Fatalf("expected BadRequest on re-join, got %v", err)
	}
	if apperror.CodeOf(err) != apperror.CodeAlreadyMember {
		t.Errorf("expected code %s, got %s", apperror.CodeAlreadyMember, apperror.CodeOf(err))
	}

	if exists, err := store.Exists(ctx, joiner.ID, ws.ID); err != nil || !exists {
		t.Errorf("membership lost after rejected re-join: exists=%v err=%v", exists, err)
	}
}

func TestJoinByInviteCode_InvalidCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.SeedRoles(ctx)
	joiner := fixtures.CreateUser(ctx, "Joiner", "joiner@example.com")

	_, _, err := store.JoinByInviteCode(ctx, joiner.ID, "nope1234")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected NotFound for bad code, got %v", err)
	}
}

func TestListByWorkspaceWithUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")

	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	fixtures.CreateMember(ctx, owner.ID, ws.ID, roles[authz.RoleOwner].ID)
	fixtures.CreateMember(ctx, member.ID, ws.ID, roles[authz.RoleMember].ID)

	list, err := store.ListByWorkspaceWithUsers(ctx, ws.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 members, got %d", len(list))
	}

	byEmail := map[string]string{}
	for _, m := range list {
		byEmail[m.UserEmail] = m.RoleName
	}
	if byEmail["owner@example.com"] != authz.RoleOwner {
		t.Errorf("owner listed with role %s", byEmail["owner@example.com"])
	}
	if byEmail["member@example.com"] != authz.RoleMember {
		t.Errorf("member listed with role %s", byEmail["member@example.com"])
	}
}

func TestCountByWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	roles := fixtures.SeedRoles(ctx)
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	fixtures.CreateMember(ctx, owner.ID, ws.ID, roles[authz.RoleOwner].ID)

	n, err := store.CountByWorkspace(ctx, ws.ID)
	if err != nil || n != 1 {
		t.Errorf("count = %d, err = %v", n, err)
	}
}
