package taskstore_test

import (
	"testing"
	"time"

	taskstore "github.com/dalemusser/crewdeck/internal/app/store/tasks"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	p := fixtures.CreateProject(ctx, ws.ID, owner.ID, "Launch")

	task, err := store.Create(ctx, models.Task{
		WorkspaceID: ws.ID,
		ProjectID:   p.ID,
		Title:       "Write checklist",
		CreatedBy:   owner.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != models.TaskStatusTodo {
		t.Errorf("default status = %s", task.Status)
	}
	if task.Priority != models.TaskPriorityMedium {
		t.Errorf("default priority = %s", task.Priority)
	}
}

func TestUpdate_ScopedToProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	p := fixtures.CreateProject(ctx, ws.ID, owner.ID, "Launch")
	task := fixtures.CreateTask(ctx, ws.ID, p.ID, owner.ID, "Draft", models.TaskStatusTodo)

	updated, err := store.Update(ctx, task.ID, p.ID, ws.ID, models.Task{
		Status:   models.TaskStatusInProgress,
		Priority: models.TaskPriorityHigh,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.TaskStatusInProgress || updated.Priority != models.TaskPriorityHigh {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Title != "Draft" {
		t.Errorf("unset fields must be kept, title = %s", updated.Title)
	}

	// Wrong project id: NotFound, no cross-project edits.
	_, err = store.Update(ctx, task.ID, primitive.NewObjectID(), ws.ID, models.Task{Title: "hijack"})
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("expected NotFound through wrong project, got %v", err)
	}
}

func TestAnalyticsByWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	p := fixtures.CreateProject(ctx, ws.ID, owner.ID, "Launch")

	past := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)

	// Overdue: past due date, not DONE.
	overdue := fixtures.CreateTask(ctx, ws.ID, p.ID, owner.ID, "late", models.TaskStatusInProgress)
	if _, err := store.Update(ctx, overdue.ID, p.ID, ws.ID, models.Task{DueDate: &past}); err != nil {
		t.Fatal(err)
	}
	// Past due but DONE: completed, not overdue.
	done := fixtures.CreateTask(ctx, ws.ID, p.ID, owner.ID, "finished", models.TaskStatusDone)
	if _, err := store.Update(ctx, done.ID, p.ID, ws.ID, models.Task{DueDate: &past}); err != nil {
		t.Fatal(err)
	}
	// Future due date: neither.
	pending := fixtures.CreateTask(ctx, ws.ID, p.ID, owner.ID, "pending", models.TaskStatusTodo)
	if _, err := store.Update(ctx, pending.ID, p.ID, ws.ID, models.Task{DueDate: &future}); err != nil {
		t.Fatal(err)
	}

	stats, err := store.AnalyticsByWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if stats.TotalTasks != 3 {
		t.Errorf("total = %d", stats.TotalTasks)
	}
	if stats.OverdueTasks != 1 {
		t.Errorf("overdue = %d", stats.OverdueTasks)
	}
	if stats.CompletedTasks != 1 {
		t.Errorf("completed = %d", stats.CompletedTasks)
	}
}

func TestDeleteByWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	ws := fixtures.CreateWorkspace(ctx, owner.ID, "Team")
	other := fixtures.CreateWorkspace(ctx, owner.ID, "Other")
	p := fixtures.CreateProject(ctx, ws.ID, owner.ID, "Launch")
	po := fixtures.CreateProject(ctx, other.ID, owner.ID, "Elsewhere")

	fixtures.CreateTask(ctx, ws.ID, p.ID, owner.ID, "a", models.TaskStatusTodo)
	fixtures.CreateTask(ctx, ws.ID, p.ID, owner.ID, "b", models.TaskStatusTodo)
	fixtures.CreateTask(ctx, other.ID, po.ID, owner.ID, "c", models.TaskStatusTodo)

	n, err := store.DeleteByWorkspace(ctx, ws.ID)
	if err != nil || n != 2 {
		t.Fatalf("deleted %d, err = %v", n, err)
	}

	remaining, err := store.ListByProject(ctx, po.ID)
	if err != nil || len(remaining) != 1 {
		t.Errorf("unrelated workspace tasks affected: %d, err = %v", len(remaining), err)
	}
}
