// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /members.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/workspaces/{inviteCode}/join", h.ServeJoin)
	return r
}
