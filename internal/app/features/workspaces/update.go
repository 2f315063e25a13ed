// internal/app/features/workspaces/update.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/sanitize"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
)

// ServeUpdate handles PUT /workspaces/{workspaceID}. Requires
// EDIT_WORKSPACE.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	wsID, err := pathID(r, "workspaceID")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req updateRequest
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

	if _, err := h.gate(ctx, r, userID, wsID, authz.EditWorkspace); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ws, err := h.Workspaces.Update(ctx, wsID, req.Name, req.Description)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, workspaceResponse{Workspace: ws})
}
