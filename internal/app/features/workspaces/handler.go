// internal/app/features/workspaces/handler.go
package workspaces

import (
	"context"
	"net/http"

	memberstore "github.com/dalemusser/crewdeck/internal/app/store/members"
	rolestore "github.com/dalemusser/crewdeck/internal/app/store/roles"
	taskstore "github.com/dalemusser/crewdeck/internal/app/store/tasks"
	workspacestore "github.com/dalemusser/crewdeck/internal/app/store/workspaces"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/auditlog"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves workspace CRUD, member listing, role changes, and
// analytics.
type Handler struct {
	Workspaces *workspacestore.Store
	Members    *memberstore.Store
	Roles      *rolestore.Store
	Tasks      *taskstore.Store
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(ws *workspacestore.Store, members *memberstore.Store, roles *rolestore.Store,
	tasks *taskstore.Store, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{
		Workspaces: ws,
		Members:    members,
		Roles:      roles,
		Tasks:      tasks,
		AuditLog:   audit,
		Log:        log,
	}
}

// pathID parses the named URL parameter as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperror.BadRequest(apperror.CodeValidation,
			"invalid "+name)
	}
	return id, nil
}

// requireUser returns the signed-in user's id or an Unauthorized error.
func requireUser(r *http.Request) (primitive.ObjectID, error) {
	id, ok := auth.CurrentUserID(r)
	if !ok {
		return primitive.NilObjectID, apperror.Unauthorized(apperror.CodeAccessUnauthorized,
			"not signed in")
	}
	return id, nil
}

// gate resolves the caller's role in the workspace and checks the
// required permissions against the catalog. Membership resolution and
// the permission check stay separate failures: ResolveRole reports
// NotFound (no such workspace) or Unauthorized/not-a-member, while the
// catalog check reports Unauthorized/missing-permission. Denials are
// audited; the role name is returned for callers that need it.
func (h *Handler) gate(ctx context.Context, r *http.Request, userID, wsID primitive.ObjectID, required ...authz.Permission) (string, error) {
	roleName, err := h.Members.ResolveRole(ctx, userID, wsID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnauthorized {
			h.AuditLog.AccessDenied(ctx, r, userID, wsID, apperror.CodeOf(err))
		}
		return "", err
	}
	if err := authz.Authorize(roleName, required...); err != nil {
		h.AuditLog.AccessDenied(ctx, r, userID, wsID, apperror.CodeOf(err))
		return "", err
	}
	return roleName, nil
}
