// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	tasks *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects"), tasks: db.Collection("tasks")}
}

// Create inserts a project under a workspace.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetInWorkspace retrieves a project scoped to its workspace. Scoping
// by both ids keeps one workspace's member from addressing another
// workspace's project by id.
func (s *Store) GetInWorkspace(ctx context.Context, projectID, workspaceID primitive.ObjectID) (models.Project, error) {
	var p models.Project
	err := s.c.FindOne(ctx, bson.M{"_id": projectID, "workspace_id": workspaceID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Project{}, apperror.NotFound(apperror.CodeResourceNotFound,
				"project not found in this workspace")
		}
		return models.Project{}, err
	}
	return p, nil
}

// ListByWorkspace returns a workspace's projects, newest first.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update modifies a project's name, description, and emoji.
func (s *Store) Update(ctx context.Context, projectID, workspaceID primitive.ObjectID, name, description, emoji string) (models.Project, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if description != "" {
		set["description"] = description
	}
	if emoji != "" {
		set["emoji"] = emoji
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": projectID, "workspace_id": workspaceID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var p models.Project
	if err := res.Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Project{}, apperror.NotFound(apperror.CodeResourceNotFound,
				"project not found in this workspace")
		}
		return models.Project{}, err
	}
	return p, nil
}

// Delete removes a project and its tasks.
func (s *Store) Delete(ctx context.Context, projectID, workspaceID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": projectID, "workspace_id": workspaceID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound(apperror.CodeResourceNotFound, "project not found in this workspace")
	}
	_, err = s.tasks.DeleteMany(ctx, bson.M{"project_id": projectID})
	return err
}

// DeleteByWorkspace removes all projects in a workspace. Returns the
// number of documents deleted.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
