// internal/app/features/workspaces/delete.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
)

// ServeDelete handles DELETE /workspaces/{workspaceID}.
//
// Two checks apply: the permission gate (DELETE_WORKSPACE) and, inside
// the cascade, the literal owner check. An ADMIN who somehow held
// DELETE_WORKSPACE would still be refused by the owner check; the
// stricter rule wins. The cascade removes projects, tasks, and members,
// repairs the caller's current-workspace pointer, then deletes the
// workspace, all in one transaction.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.gate(ctx, r, userID, wsID, authz.DeleteWorkspace); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	current, err := h.Workspaces.CascadeDelete(ctx, wsID, userID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.AuditLog.WorkspaceDeleted(ctx, r, userID, wsID)

	resp := deleteResponse{Message: "workspace deleted successfully"}
	if current != nil {
		hex := current.Hex()
		resp.CurrentWorkspace = &hex
	}
	httpjson.Respond(w, http.StatusOK, resp)
}
