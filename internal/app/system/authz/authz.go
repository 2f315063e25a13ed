// internal/app/system/authz/authz.go
//
// Package authz holds the fixed role catalog and the permission gate.
// The catalog is a closed, immutable mapping constructed at package
// init; request traffic never mutates it, so every function here is
// safe for unlocked concurrent use.
package authz

import (
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
)

// Permission is an atomic capability token checked by the gate.
type Permission string

const (
	CreateWorkspace         Permission = "CREATE_WORKSPACE"
	DeleteWorkspace         Permission = "DELETE_WORKSPACE"
	EditWorkspace           Permission = "EDIT_WORKSPACE"
	ManageWorkspaceSettings Permission = "MANAGE_WORKSPACE_SETTINGS"
	AddMember               Permission = "ADD_MEMBER"
	ChangeMemberRole        Permission = "CHANGE_MEMBER_ROLE"
	RemoveMember            Permission = "REMOVE_MEMBER"
	CreateProject           Permission = "CREATE_PROJECT"
	EditProject             Permission = "EDIT_PROJECT"
	DeleteProject           Permission = "DELETE_PROJECT"
	CreateTask              Permission = "CREATE_TASK"
	EditTask                Permission = "EDIT_TASK"
	DeleteTask              Permission = "DELETE_TASK"
	ViewOnly                Permission = "VIEW_ONLY"
)

// Role names. These are the only values a seeded Role record may carry.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// RoleNames lists the catalog's role names in seeding order.
var RoleNames = []string{RoleOwner, RoleAdmin, RoleMember}

// catalog maps role name -> permission set. Built once at init from
// rolePermissions; never written afterward.
var catalog map[string]map[Permission]struct{}

var rolePermissions = map[string][]Permission{
	RoleOwner: {
		CreateWorkspace, DeleteWorkspace, EditWorkspace, ManageWorkspaceSettings,
		AddMember, ChangeMemberRole, RemoveMember,
		CreateProject, EditProject, DeleteProject,
		CreateTask, EditTask, DeleteTask,
		ViewOnly,
	},
	RoleAdmin: {
		AddMember, ManageWorkspaceSettings,
		CreateProject, EditProject, DeleteProject,
		CreateTask, EditTask, DeleteTask,
		ViewOnly,
	},
	RoleMember: {
		ViewOnly, CreateTask, EditTask,
	},
}

func init() {
	catalog = make(map[string]map[Permission]struct{}, len(rolePermissions))
	for name, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		catalog[name] = set
	}
}

// PermissionsFor returns the catalog permission set for roleName.
// The returned slice is a fresh copy; callers may not reach the catalog
// through it. Unseeded role names fail with NotFound.
func PermissionsFor(roleName string) ([]Permission, error) {
	perms, ok := rolePermissions[roleName]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeRoleNotFound, "role "+roleName+" not found in catalog")
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out, nil
}

// ValidRole reports whether roleName is in the catalog.
func ValidRole(roleName string) bool {
	_, ok := catalog[roleName]
	return ok
}

// Authorize allows the action when every required permission is present
// in the role's set (set inclusion, not equality). An unknown role name
// denies with NotFound; a known role missing any required permission
// denies with Unauthorized.
func Authorize(roleName string, required ...Permission) error {
	set, ok := catalog[roleName]
	if !ok {
		return apperror.NotFound(apperror.CodeRoleNotFound, "role "+roleName+" not found in catalog")
	}
	for _, p := range required {
		if _, has := set[p]; !has {
			return apperror.Unauthorized(apperror.CodeAccessUnauthorized,
				"you do not have the necessary permissions to perform this action")
		}
	}
	return nil
}
