// internal/app/features/workspaces/analytics.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
)

// ServeAnalytics handles GET /workspaces/{workspaceID}/analytics: task
// totals for the workspace. Any member may view.
func (h *Handler) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.gate(ctx, r, userID, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	stats, err := h.Tasks.AnalyticsByWorkspace(ctx, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, analyticsResponse{
		TotalTasks:     stats.TotalTasks,
		OverdueTasks:   stats.OverdueTasks,
		CompletedTasks: stats.CompletedTasks,
	})
}
