// internal/app/features/workspaces/get.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
)

// ServeGet handles GET /workspaces/{workspaceID}. Any member may view;
// the membership check itself is the gate.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	roleName, err := h.gate(ctx, r, userID, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ws, err := h.Workspaces.GetByID(ctx, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	count, err := h.Members.CountByWorkspace(ctx, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, detailResponse{
		Workspace:   ws,
		MemberCount: count,
		Role:        roleName,
	})
}
