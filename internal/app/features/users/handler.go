// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	userstore "github.com/dalemusser/crewdeck/internal/app/store/users"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own profile.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, log *zap.Logger) *Handler {
	return &Handler{Users: users, Log: log}
}

type currentResponse struct {
	User models.User `json:"user"`
}

// ServeCurrent handles GET /users/current. The profile is always loaded
// fresh so current_workspace reflects any repair done by a cascade
// delete since sign-in.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, h.Log, apperror.Unauthorized(apperror.CodeAccessUnauthorized,
			"not signed in"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, currentResponse{User: user.OmitPassword()})
}
