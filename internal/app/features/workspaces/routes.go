// internal/app/features/workspaces/routes.go
package workspaces

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /workspaces. All routes
// require a signed-in user; per-workspace authorization happens in the
// handlers via the membership directory and permission gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{workspaceID}", h.ServeGet)
	r.Put("/{workspaceID}", h.ServeUpdate)
	r.Delete("/{workspaceID}", h.ServeDelete)
	r.Get("/{workspaceID}/members", h.ServeMembers)
	r.Put("/{workspaceID}/members/role", h.ServeChangeRole)
	r.Get("/{workspaceID}/analytics", h.ServeAnalytics)
	return r
}
