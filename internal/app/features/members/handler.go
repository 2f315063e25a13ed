// internal/app/features/members/handler.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	memberstore "github.com/dalemusser/crewdeck/internal/app/store/members"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the invite/join flow.
type Handler struct {
	Members *memberstore.Store
	Log     *zap.Logger
}

func NewHandler(members *memberstore.Store, log *zap.Logger) *Handler {
	return &Handler{Members: members, Log: log}
}

type joinResponse struct {
	Message     string `json:"message"`
	WorkspaceID string `json:"workspaceId"`
	Role        string `json:"role"`
}

// ServeJoin handles POST /members/workspaces/{inviteCode}/join. The
// invite code is the only credential; anyone signed in who presents a
// valid code becomes a MEMBER. Existing members get a BadRequest, and a
// racing double-join loses to the unique membership index.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, h.Log, apperror.Unauthorized(apperror.CodeAccessUnauthorized,
			"not signed in"))
		return
	}

	code := chi.URLParam(r, "inviteCode")
	if code == "" {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation,
			"invite code is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	wsID, roleName, err := h.Members.JoinByInviteCode(ctx, userID, code)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("user joined workspace",
		zap.String("user_id", userID.Hex()),
		zap.String("workspace_id", wsID.Hex()),
		zap.String("role", roleName))

	httpjson.Respond(w, http.StatusOK, joinResponse{
		Message:     "successfully joined the workspace",
		WorkspaceID: wsID.Hex(),
		Role:        roleName,
	})
}
