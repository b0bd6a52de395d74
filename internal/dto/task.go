package dto

import (
	"time"

	"github.com/sprintr-app/sprintr-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string               `json:"id"`
	WorkspaceID string               `json:"workspaceId"`
	ProjectID   string               `json:"projectId"`
	ReporterID  *string              `json:"reporterId"`
	AssigneeID  string               `json:"assigneeId"`
	Name        string               `json:"name"`
	Summary     string               `json:"summary"`
	Description string               `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	WorkType    models.TaskWorkType  `json:"workType"`
	Priority    *models.TaskPriority `json:"priority"`
	Position    int                  `json:"position"`
	Attachments []string             `json:"attachments"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Project     *ProjectDTO          `json:"project,omitempty"`
	Assignee    *MemberDTO           `json:"assignee,omitempty"`
	Reporter    *MemberDTO           `json:"reporter,omitempty"`
}

// TaskCommentDTO represents a task comment in API responses
type TaskCommentDTO struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	MemberID    string     `json:"memberId"`
	Body        string     `json:"body"`
	Attachments []string   `json:"attachments"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Author      *MemberDTO `json:"author,omitempty"`
}

// TaskHistoryDTO represents one audit trail entry in API responses
type TaskHistoryDTO struct {
	ID        string                  `json:"id"`
	TaskID    string                  `json:"taskId"`
	MemberID  string                  `json:"memberId"`
	Field     models.TaskHistoryField `json:"field"`
	FromValue *string                 `json:"fromValue"`
	ToValue   *string                 `json:"toValue"`
	CreatedAt time.Time               `json:"createdAt"`
	Actor     *MemberDTO              `json:"actor,omitempty"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID          string                  `json:"id"`
	UserID      string                  `json:"userId"`
	WorkspaceID string                  `json:"workspaceId"`
	ActorID     *string                 `json:"actorId"`
	TaskID      *string                 `json:"taskId"`
	Type        models.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Body        string                  `json:"body"`
	Link        *string                 `json:"link"`
	Metadata    map[string]interface{}  `json:"metadata"`
	ReadAt      *time.Time              `json:"readAt"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// NotificationListResponse bundles notifications with the unread total
type NotificationListResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int               `json:"unreadCount"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO. Preloaded relations are
// mapped into populated sub-documents.
func ToTaskDTO(task models.Task, resolve ImageURLResolver) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		WorkspaceID: task.WorkspaceID,
		ProjectID:   task.ProjectID,
		ReporterID:  task.ReporterID,
		AssigneeID:  task.AssigneeID,
		Name:        task.Name,
		Summary:     task.Summary,
		Description: task.Description,
		Status:      task.Status,
		WorkType:    task.WorkType,
		Priority:    task.Priority,
		Position:    task.Position,
		Attachments: attachmentsSlice(task.Attachments),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Project.ID != "" {
		project := ToProjectDTO(task.Project, resolve)
		dto.Project = &project
	}
	if task.Assignee.ID != "" {
		assignee := ToMemberDTO(task.Assignee)
		dto.Assignee = &assignee
	}
	if task.Reporter != nil && task.Reporter.ID != "" {
		reporter := ToMemberDTO(*task.Reporter)
		dto.Reporter = &reporter
	}

	return dto
}

// ToTaskCommentDTO converts a TaskComment model to TaskCommentDTO
func ToTaskCommentDTO(comment models.TaskComment) TaskCommentDTO {
	dto := TaskCommentDTO{
		ID:          comment.ID,
		TaskID:      comment.TaskID,
		MemberID:    comment.MemberID,
		Body:        comment.Body,
		Attachments: attachmentsSlice(comment.Attachments),
		CreatedAt:   comment.CreatedAt,
		UpdatedAt:   comment.UpdatedAt,
	}

	if comment.Author.ID != "" {
		author := ToMemberDTO(comment.Author)
		dto.Author = &author
	}

	return dto
}

// ToTaskHistoryDTO converts a TaskHistory model to TaskHistoryDTO
func ToTaskHistoryDTO(entry models.TaskHistory) TaskHistoryDTO {
	dto := TaskHistoryDTO{
		ID:        entry.ID,
		TaskID:    entry.TaskID,
		MemberID:  entry.MemberID,
		Field:     entry.Field,
		FromValue: entry.FromValue,
		ToValue:   entry.ToValue,
		CreatedAt: entry.CreatedAt,
	}

	if entry.Actor.ID != "" {
		actor := ToMemberDTO(entry.Actor)
		dto.Actor = &actor
	}

	return dto
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(notification models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:          notification.ID,
		UserID:      notification.UserID,
		WorkspaceID: notification.WorkspaceID,
		ActorID:     notification.ActorID,
		TaskID:      notification.TaskID,
		Type:        notification.Type,
		Title:       notification.Title,
		Body:        notification.Body,
		Link:        notification.Link,
		Metadata:    map[string]interface{}(notification.Metadata),
		ReadAt:      notification.ReadAt,
		CreatedAt:   notification.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task, resolve ImageURLResolver) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, resolve)
	}
	return items
}

// attachmentsSlice normalizes a stored attachment list so responses
// always carry an array, never null.
func attachmentsSlice(stored []string) []string {
	if stored == nil {
		return []string{}
	}
	return stored
}
