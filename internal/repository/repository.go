package repository

import (
	"github.com/sprintr-app/sprintr-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// MemberRepository defines the interface for workspace membership data access
type MemberRepository interface {
	// Find resolves the membership that authorizes a user inside a
	// workspace. Returns (nil, nil) when the user is not a member.
	Find(workspaceID, userID string) (*models.Member, error)

	// FindByID finds a member by ID
	FindByID(id string) (*models.Member, error)

	// FindByIDWithUser finds a member by ID with the user record preloaded
	FindByIDWithUser(id string) (*models.Member, error)

	// ListByWorkspace lists the members of a workspace with users preloaded
	ListByWorkspace(workspaceID string) ([]models.Member, error)

	// CountByWorkspace counts the members of a workspace
	CountByWorkspace(workspaceID string) (int64, error)

	// Create creates a new member
	Create(member *models.Member) error

	// UpdateRole updates a member's role
	UpdateRole(id string, role models.MemberRole) error

	// Delete removes a member
	Delete(id string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id string) (*models.Task, error)

	// FindByIDs finds all tasks whose ID is in ids
	FindByIDs(ids []string) ([]models.Task, error)

	// NamesByPrefix lists existing task codes in a project matching "prefix-%"
	NamesByPrefix(projectID, prefix string) ([]string, error)

	// LowestPosition returns the smallest position in a status column,
	// or nil when the column is empty
	LowestPosition(workspaceID string, status models.TaskStatus) (*int, error)

	// ApplyUpdates applies a partial column update and returns the fresh row
	ApplyUpdates(id string, updates map[string]interface{}) (*models.Task, error)

	// Delete hard-deletes a task with its comments and history
	Delete(id string) error
}

// TaskHistoryRepository defines the interface for the audit trail
type TaskHistoryRepository interface {
	// Append inserts history rows. The log is append-only.
	Append(entries []models.TaskHistory) error

	// ListByTask lists history rows for a task, newest first
	ListByTask(taskID string) ([]models.TaskHistory, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create inserts a notification row
	Create(notification *models.Notification) error

	// ListByUser lists a user's notifications, newest first. workspaceID
	// and limit are optional ("" / 0 disable them).
	ListByUser(userID, workspaceID string, limit int) ([]models.Notification, error)

	// MarkRead marks one of the user's notifications read and returns it
	MarkRead(id, userID string) (*models.Notification, error)

	// MarkAllRead marks all of the user's unread notifications read,
	// optionally scoped to a workspace, and returns the affected rows
	MarkAllRead(userID, workspaceID string) ([]models.Notification, error)

	// CountUnread counts the user's unread notifications, optionally
	// scoped to a workspace
	CountUnread(userID, workspaceID string) (int64, error)
}
