// internal/app/features/workspaces/types.go
package workspaces

import "github.com/dalemusser/crewdeck/internal/domain/models"

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type changeRoleRequest struct {
	MemberID string `json:"memberId"` // user id of the member to change
	RoleID   string `json:"roleId"`
}

type workspaceResponse struct {
	Workspace models.Workspace `json:"workspace"`
}

type listResponse struct {
	Workspaces []models.Workspace `json:"workspaces"`
}

type detailResponse struct {
	Workspace   models.Workspace `json:"workspace"`
	MemberCount int64            `json:"memberCount"`
	Role        string           `json:"role"` // the caller's role
}

type membersResponse struct {
	Members []models.MemberDetail `json:"members"`
	Roles   []models.Role         `json:"roles"`
}

type memberResponse struct {
	Member models.Member `json:"member"`
}

type analyticsResponse struct {
	TotalTasks     int64 `json:"totalTasks"`
	OverdueTasks   int64 `json:"overdueTasks"`
	CompletedTasks int64 `json:"completedTasks"`
}

type deleteResponse struct {
	Message          string  `json:"message"`
	CurrentWorkspace *string `json:"currentWorkspace"`
}
