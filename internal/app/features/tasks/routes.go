// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under
// /workspaces/{workspaceID}/projects/{projectID}/tasks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{taskID}", h.ServeGet)
	r.Put("/{taskID}", h.ServeUpdate)
	r.Delete("/{taskID}", h.ServeDelete)
	return r
}
