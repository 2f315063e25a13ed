// internal/app/features/workspaces/list.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /workspaces: every workspace the caller is a
// member of, in any role.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	memberships, err := h.Members.ListByUser(ctx, userID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.WorkspaceID)
	}

	list, err := h.Workspaces.ListByIDs(ctx, ids)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, listResponse{Workspaces: list})
}
