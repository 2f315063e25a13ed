// internal/app/features/auth/routes.go
package auth

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /auth.
func Routes(h *Handler, g *GoogleHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.ServeRegister)
	r.Post("/login", h.ServeLogin)
	r.Post("/logout", h.ServeLogout)
	r.Get("/google", g.ServeBegin)
	r.Get("/google/callback", g.ServeCallback)
	return r
}
