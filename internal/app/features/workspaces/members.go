// internal/app/features/workspaces/members.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeMembers handles GET /workspaces/{workspaceID}/members. Any
// member may view the roster; the response includes the role catalog so
// clients can render role pickers.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.gate(ctx, r, userID, wsID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	members, err := h.Members.ListByWorkspaceWithUsers(ctx, wsID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	roles, err := h.Roles.List(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, membersResponse{Members: members, Roles: roles})
}

// ServeChangeRole handles PUT /workspaces/{workspaceID}/members/role.
// Requires CHANGE_MEMBER_ROLE.
func (h *Handler) ServeChangeRole(w http.ResponseWriter, r *http.Request) {
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

	var req changeRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	memberUserID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation, "invalid memberId"))
		return
	}
	roleID, err := primitive.ObjectIDFromHex(req.RoleID)
	if err != nil {
		httpjson.Error(w, h.Log, apperror.BadRequest(apperror.CodeValidation, "invalid roleId"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.gate(ctx, r, userID, wsID, authz.ChangeMemberRole); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	member, err := h.Workspaces.ChangeMemberRole(ctx, wsID, memberUserID, roleID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.AuditLog.RoleChanged(ctx, r, userID, wsID)
	httpjson.Respond(w, http.StatusOK, memberResponse{Member: member})
}
