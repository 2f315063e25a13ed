// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	rolestore "github.com/dalemusser/crewdeck/internal/app/store/roles"
	workspacestore "github.com/dalemusser/crewdeck/internal/app/store/workspaces"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// SeedRoles seeds the role catalog and returns the roles by name.
func (f *Fixtures) SeedRoles(ctx context.Context) map[string]models.Role {
	f.t.Helper()

	if err := rolestore.New(f.db).Seed(ctx, zap.NewNop()); err != nil {
		f.t.Fatalf("seed roles: %v", err)
	}

	roles, err := rolestore.New(f.db).List(ctx)
	if err != nil {
		f.t.Fatalf("list roles: %v", err)
	}
	out := make(map[string]models.Role, len(roles))
	for _, r := range roles {
		out[r.Name] = r
	}
	return out
}

// CreateUser inserts a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return u
}

// CreateWorkspace inserts a workspace owned by ownerID, without any
// membership rows. Use CreateMember to add members.
func (f *Fixtures) CreateWorkspace(ctx context.Context, ownerID primitive.ObjectID, name string) models.Workspace {
	f.t.Helper()

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Owner:      ownerID,
		InviteCode: workspacestore.NewInviteCode(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("create test workspace: %v", err)
	}
	return ws
}

// CreateMember inserts a membership row binding user to workspace with
// the given role.
func (f *Fixtures) CreateMember(ctx context.Context, userID, workspaceID, roleID primitive.ObjectID) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		RoleID:      roleID,
		JoinedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test member: %v", err)
	}
	return m
}

// CreateProject inserts a test project in the workspace.
func (f *Fixtures) CreateProject(ctx context.Context, workspaceID, createdBy primitive.ObjectID, name string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		Name:        name,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("create test project: %v", err)
	}
	return p
}

// CreateTask inserts a test task in the project.
func (f *Fixtures) CreateTask(ctx context.Context, workspaceID, projectID, createdBy primitive.ObjectID, title, status string) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		ProjectID:   projectID,
		Title:       title,
		Status:      status,
		Priority:    models.TaskPriorityMedium,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("create test task: %v", err)
	}
	return task
}

// Count returns the number of documents in a collection matching the
// filter.
func (f *Fixtures) Count(ctx context.Context, collection string, filter bson.M) int64 {
	f.t.Helper()

	n, err := f.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("count %s: %v", collection, err)
	}
	return n
}
