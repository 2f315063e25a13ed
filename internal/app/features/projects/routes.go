// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under
// /workspaces/{workspaceID}/projects.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{projectID}", h.ServeGet)
	r.Put("/{projectID}", h.ServeUpdate)
	r.Delete("/{projectID}", h.ServeDelete)
	return r
}
