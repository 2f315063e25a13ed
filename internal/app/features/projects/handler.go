// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	memberstore "github.com/dalemusser/crewdeck/internal/app/store/members"
	projectstore "github.com/dalemusser/crewdeck/internal/app/store/projects"
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

// Handler serves project CRUD within a workspace.
type Handler struct {
	Projects *projectstore.Store
	Members  *memberstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(projects *projectstore.Store, members *memberstore.Store, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{Projects: projects, Members: members, AuditLog: audit, Log: log}
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

type projectResponse struct {
	Project models.Project `json:"project"`
}

type projectListResponse struct {
	Projects []models.Project `json:"projects"`
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperror.BadRequest(apperror.CodeValidation,
			"invalid "+name)
	}
	return id, nil
}

// gate resolves the caller's role and checks required permissions.
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

// ServeCreate handles POST /workspaces/{workspaceID}/projects. Requires
// CREATE_PROJECT.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	wsID, err := pathID(r, "workspaceID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Name = sanitize.Text(req.Name)
	req.Description = sanitize.Text(req.Description)
	if req.Name == "" {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation,
			"project name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, err := h.gate(ctx, r, wsID, authz.CreateProject)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	p, err := h.Projects.Create(ctx, models.Project{
		WorkspaceID: wsID,
		Name:        req.Name,
		Description: req.Description,
		Emoji:       req.Emoji,
		CreatedBy:   userID,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusCreated, projectResponse{Project: p})
}

// ServeList handles GET /workspaces/{workspaceID}/projects. Any member
// may view.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	wsID, err := pathID(r, "workspaceID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.gate(ctx, r, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	list, err := h.Projects.ListByWorkspace(ctx, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, projectListResponse{Projects: list})
}

// ServeGet handles GET /workspaces/{workspaceID}/projects/{projectID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	wsID, err := pathID(r, "workspaceID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.gate(ctx, r, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	p, err := h.Projects.GetInWorkspace(ctx, projectID, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, projectResponse{Project: p})
}

// ServeUpdate handles PUT /workspaces/{workspaceID}/projects/{projectID}.
// Requires EDIT_PROJECT.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	wsID, err := pathID(r, "workspaceID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Name = sanitize.Text(req.Name)
	req.Description = sanitize.Text(req.Description)
	if req.Name == "" {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation,
			"project name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.gate(ctx, r, wsID, authz.EditProject); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	p, err := h.Projects.Update(ctx, projectID, wsID, req.Name, req.Description, req.Emoji)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, projectResponse{Project: p})
}

// ServeDelete handles DELETE /workspaces/{workspaceID}/projects/{projectID}.
// Requires DELETE_PROJECT. The project's tasks go with it.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	wsID, err := pathID(r, "workspaceID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.gate(ctx, r, wsID, authz.DeleteProject); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if err := h.Projects.Delete(ctx, projectID, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "project deleted successfully"})
}
