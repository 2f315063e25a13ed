// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	memberstore "github.com/dalemusser/crewdeck/internal/app/store/members"
	projectstore "github.com/dalemusser/crewdeck/internal/app/store/projects"
	taskstore "github.com/dalemusser/crewdeck/internal/app/store/tasks"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/auditlog"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/sanitize"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves task CRUD within a project.
type Handler struct {
	Tasks    *taskstore.Store
	Projects *projectstore.Store
	Members  *memberstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(tasks *taskstore.Store, projects *projectstore.Store, members *memberstore.Store,
	audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{Tasks: tasks, Projects: projects, Members: members, AuditLog: audit, Log: log}
}

type taskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssignedTo  string  `json:"assignedTo"`
	DueDate     *string `json:"dueDate"` // RFC 3339
}

type taskResponse struct {
	Task models.Task `json:"task"`
}

type taskListResponse struct {
	Tasks []models.Task `json:"tasks"`
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperror.BadRequest(apperror.CodeValidation,
			"invalid "+name)
	}
	return id, nil
}

// scope pulls workspaceID and projectID out of the path and verifies
// the project really lives in the workspace, so a task can never be
// reached through a foreign workspace's URL.
func (h *Handler) scope(ctx context.Context, r *http.Request) (wsID, projectID primitive.ObjectID, err error) {
	wsID, err = pathID(r, "workspaceID")
	if err != nil {
		return
	}
	projectID, err = pathID(r, "projectID")
	if err != nil {
		return
	}
	_, err = h.Projects.GetInWorkspace(ctx, projectID, wsID)
	return
}

func (h *Handler) gate(ctx context.Context, r *http.Request, wsID primitive.ObjectID, required ...authz.Permission) (primitive.ObjectID, error) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		return primitive.NilObjectID, apperror.Unauthorized(apperror.CodeAccessUnauthorized,
			"not signed in")
	}
	roleName, err := h.Members.ResolveRole(ctx, userID, wsID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := authz.Authorize(roleName, required...); err != nil {
		h.AuditLog.AccessDenied(ctx, r, userID, wsID, apperror.CodeOf(err))
		return primitive.NilObjectID, err
	}
	return userID, nil
}

// parse validates the request's enums and foreign keys into a Task
// value usable for create or update.
func (h *Handler) parse(req *taskRequest) (models.Task, error) {
	req.Title = sanitize.Text(req.Title)
	req.Description = sanitize.Text(req.Description)

	t := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.Status != "" && !models.ValidTaskStatus(req.Status) {
		return models.Task{}, apperror.BadRequest(apperror.CodeValidation,
			"invalid task status: "+req.Status)
	}
	if req.Priority != "" && !models.ValidTaskPriority(req.Priority) {
		return models.Task{}, apperror.BadRequest(apperror.CodeValidation,
			"invalid task priority: "+req.Priority)
	}
	if req.AssignedTo != "" {
		id, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return models.Task{}, apperror.BadRequest(apperror.CodeValidation, "invalid assignedTo")
		}
		t.AssignedTo = &id
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return models.Task{}, apperror.BadRequest(apperror.CodeValidation,
				"dueDate must be RFC 3339")
		}
		t.DueDate = &due
	}
	return t, nil
}

// ServeCreate handles POST .../tasks. Requires CREATE_TASK.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	wsID, projectID, err := h.scope(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	userID, err := h.gate(ctx, r, wsID, authz.CreateTask)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	t, err := h.parse(&req)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if t.Title == "" {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation,
			"task title is required"))
		return
	}
	t.WorkspaceID = wsID
	t.ProjectID = projectID
	t.CreatedBy = userID

	created, err := h.Tasks.Create(ctx, t)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusCreated, taskResponse{Task: created})
}

// ServeList handles GET .../tasks. Any member may view.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	wsID, projectID, err := h.scope(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if _, err := h.gate(ctx, r, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	list, err := h.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, taskListResponse{Tasks: list})
}

// ServeGet handles GET .../tasks/{taskID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	wsID, projectID, err := h.scope(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if _, err := h.gate(ctx, r, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	t, err := h.Tasks.GetInProject(ctx, taskID, projectID, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, taskResponse{Task: t})
}

// ServeUpdate handles PUT .../tasks/{taskID}. Requires EDIT_TASK.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	wsID, projectID, err := h.scope(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if _, err := h.gate(ctx, r, wsID, authz.EditTask); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	upd, err := h.parse(&req)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	t, err := h.Tasks.Update(ctx, taskID, projectID, wsID, upd)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, taskResponse{Task: t})
}

// ServeDelete handles DELETE .../tasks/{taskID}. Requires DELETE_TASK.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	wsID, _, err := h.scope(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if _, err := h.gate(ctx, r, wsID, authz.DeleteTask); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if err := h.Tasks.Delete(ctx, taskID, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "task deleted successfully"})
}
