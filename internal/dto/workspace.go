package dto

import (
	"time"

	"github.com/sprintr-app/sprintr-api/internal/models"
)

// ImageURLResolver turns a stored image ID into a public URL. A nil
// resolver leaves image fields empty.
type ImageURLResolver func(imageID string) string

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UserID     string    `json:"userId"`
	ImageURL   *string   `json:"imageUrl"`
	InviteCode string    `json:"inviteCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MemberDTO represents a workspace member joined with their identity
type MemberDTO struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspaceId"`
	UserID      string            `json:"userId"`
	Role        models.MemberRole `json:"role"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WorkspaceInfoDTO is the public join-screen view of a workspace
type WorkspaceInfoDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ImageURL    *string `json:"imageUrl"`
	MemberCount int64   `json:"memberCount"`
}

// AnalyticsDTO summarizes workspace activity with month-over-month deltas
type AnalyticsDTO struct {
	TaskCount                int64 `json:"taskCount"`
	TaskDifference           int64 `json:"taskDifference"`
	AssignedTaskCount        int64 `json:"assignedTaskCount"`
	AssignedTaskDifference   int64 `json:"assignedTaskDifference"`
	CompletedTaskCount       int64 `json:"completedTaskCount"`
	CompletedTaskDifference  int64 `json:"completedTaskDifference"`
	IncompleteTaskCount      int64 `json:"incompleteTaskCount"`
	IncompleteTaskDifference int64 `json:"incompleteTaskDifference"`
	ProjectCount             int64 `json:"projectCount"`
	ProjectDifference        int64 `json:"projectDifference"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO. The invite
// code is only exposed to members, so callers opt in.
func ToWorkspaceDTO(workspace models.Workspace, includeInviteCode bool, resolve ImageURLResolver) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:        workspace.ID,
		Name:      workspace.Name,
		UserID:    workspace.UserID,
		ImageURL:  resolveImageURL(workspace.ImageID, resolve),
		CreatedAt: workspace.CreatedAt,
		UpdatedAt: workspace.UpdatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = workspace.InviteCode
	}
	return dto
}

// ToMemberDTO converts a Member model to MemberDTO. The user relation
// must be preloaded for name and email to be populated.
func ToMemberDTO(member models.Member) MemberDTO {
	return MemberDTO{
		ID:          member.ID,
		WorkspaceID: member.WorkspaceID,
		UserID:      member.UserID,
		Role:        member.Role,
		Name:        member.User.DisplayName(),
		Email:       member.User.Email,
		CreatedAt:   member.CreatedAt,
		UpdatedAt:   member.UpdatedAt,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, resolve ImageURLResolver) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		WorkspaceID: project.WorkspaceID,
		Name:        project.Name,
		ImageURL:    resolveImageURL(project.ImageID, resolve),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func resolveImageURL(imageID *string, resolve ImageURLResolver) *string {
	if imageID == nil || *imageID == "" || resolve == nil {
		return nil
	}
	url := resolve(*imageID)
	return &url
}
