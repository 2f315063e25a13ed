// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/store/provision"
	userstore "github.com/dalemusser/crewdeck/internal/app/store/users"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/auditlog"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/sanitize"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves registration, local login, and logout.
type Handler struct {
	Provision  *provision.Service
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(svc *provision.Service, users *userstore.Store, sm *auth.SessionManager, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{Provision: svc, Users: users, SessionMgr: sm, AuditLog: audit, Log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User models.User `json:"user"`
}

// ServeRegister handles POST /auth/register. A new user is provisioned
// together with a local account and an owning workspace, then signed in.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validateRegister(&req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Provision.RegisterLocal(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if err := h.signIn(w, r, user); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.AuditLog.Registered(ctx, r, user.ID)
	httpjson.Respond(w, http.StatusCreated, userResponse{User: user})
}

// ServeLogin handles POST /auth/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation,
			"email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Provision.VerifyLocal(ctx, req.Email, req.Password)
	if err != nil {
		h.AuditLog.Log(ctx, auditlog.Event{
			Category:      auditlog.CategoryAuth,
			EventType:     "login",
			Success:       false,
			IP:            auditlog.ClientIP(r),
			FailureReason: apperror.CodeOf(err),
		})
		httpjson.Error(w, h.Log, err)
		return
	}

	if err := h.signIn(w, r, user); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if err := h.Users.TouchLastLogin(ctx, user.ID); err != nil {
		h.Log.Warn("touch last login failed", zap.Error(err),
			zap.String("user_id", user.ID.Hex()))
	}

	h.AuditLog.Login(ctx, r, user.ID, true, "")
	httpjson.Respond(w, http.StatusOK, userResponse{User: user})
}

// ServeLogout handles POST /auth/logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign-out failed", zap.Error(err))
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u models.User) error {
	return h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	})
}

func validateRegister(req *registerRequest) error {
	req.Name = sanitize.Text(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Name == "":
		return apperror.BadRequest(apperror.CodeValidation, "name is required")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return apperror.BadRequest(apperror.CodeValidation, "a valid email is required")
	case len(req.Password) < 8:
		return apperror.BadRequest(apperror.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}
