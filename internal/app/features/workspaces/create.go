// internal/app/features/workspaces/create.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/sanitize"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
)

// ServeCreate handles POST /workspaces. The workspace, the caller's
// OWNER membership, and the current-workspace pointer update land
// atomically or not at all.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Name = sanitize.Text(req.Name)
	req.Description = sanitize.Text(req.Description)
	if req.Name == "" {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation,
			"workspace name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, err := h.Workspaces.CreateWithOwner(ctx, userID, req.Name, req.Description)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusCreated, workspaceResponse{Workspace: ws})
}
