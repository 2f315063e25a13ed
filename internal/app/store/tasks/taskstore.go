// internal/app/store/tasks/taskstore.go
package taskstore

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
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create inserts a task under a project, denormalizing the workspace id
// for cascade deletes and analytics.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	if t.Status == "" {
		t.Status = models.TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = models.TaskPriorityMedium
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetInProject retrieves a task scoped to its project and workspace.
func (s *Store) GetInProject(ctx context.Context, taskID, projectID, workspaceID primitive.ObjectID) (models.Task, error) {
	var t models.Task
	err := s.c.FindOne(ctx, bson.M{
		"_id":          taskID,
		"project_id":   projectID,
		"workspace_id": workspaceID,
	}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Task{}, apperror.NotFound(apperror.CodeResourceNotFound,
				"task not found in this project")
		}
		return models.Task{}, err
	}
	return t, nil
}

// ListByProject returns a project's tasks, newest first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces a task's mutable fields.
func (s *Store) Update(ctx context.Context, taskID, projectID, workspaceID primitive.ObjectID, upd models.Task) (models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != "" {
		set["title"] = upd.Title
	}
	if upd.Description != "" {
		set["description"] = upd.Description
	}
	if upd.Status != "" {
		set["status"] = upd.Status
	}
	if upd.Priority != "" {
		set["priority"] = upd.Priority
	}
	if upd.AssignedTo != nil {
		set["assigned_to"] = *upd.AssignedTo
	}
	if upd.DueDate != nil {
		set["due_date"] = *upd.DueDate
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "project_id": projectID, "workspace_id": workspaceID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var t models.Task
	if err := res.Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Task{}, apperror.NotFound(apperror.CodeResourceNotFound,
				"task not found in this project")
		}
		return models.Task{}, err
	}
	return t, nil
}

// Delete removes a single task.
func (s *Store) Delete(ctx context.Context, taskID, workspaceID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": taskID, "workspace_id": workspaceID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound(apperror.CodeResourceNotFound, "task not found in this workspace")
	}
	return nil
}

// DeleteByWorkspace removes all tasks in a workspace. Returns the
// number of documents deleted.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Analytics summarizes task counts for a workspace.
type Analytics struct {
	TotalTasks     int64 `json:"totalTasks"`
	OverdueTasks   int64 `json:"overdueTasks"`
	CompletedTasks int64 `json:"completedTasks"`
}

// AnalyticsByWorkspace computes the workspace task analytics: total,
// overdue (due in the past and not DONE), and completed.
func (s *Store) AnalyticsByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (Analytics, error) {
	now := time.Now().UTC()

	total, err := s.c.CountDocuments(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return Analytics{}, err
	}
	overdue, err := s.c.CountDocuments(ctx, bson.M{
		"workspace_id": workspaceID,
		"due_date":     bson.M{"$lt": now},
		"status":       bson.M{"$ne": models.TaskStatusDone},
	})
	if err != nil {
		return Analytics{}, err
	}
	completed, err := s.c.CountDocuments(ctx, bson.M{
		"workspace_id": workspaceID,
		"status":       models.TaskStatusDone,
	})
	if err != nil {
		return Analytics{}, err
	}

	return Analytics{TotalTasks: total, OverdueTasks: overdue, CompletedTasks: completed}, nil
}
