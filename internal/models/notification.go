package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "task_assigned"
	NotificationTaskCreated  NotificationType = "task_created"
	NotificationCommentAdded NotificationType = "comment_added"
	NotificationMentioned    NotificationType = "mentioned"
)

type Notification struct {
	ID          string            `gorm:"type:uuid;primarykey" json:"id"`
	UserID      string            `gorm:"type:uuid;not null;index" json:"user_id"`
	WorkspaceID string            `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ActorID     *string           `gorm:"type:uuid" json:"actor_id"`
	TaskID      *string           `gorm:"type:uuid" json:"task_id"`
	Type        NotificationType  `gorm:"type:varchar(30);not null" json:"type"`
	Title       string            `gorm:"type:varchar(512);not null" json:"title"`
	Body        string            `gorm:"type:text" json:"body"`
	Link        *string           `gorm:"type:varchar(512)" json:"link"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	ReadAt      *time.Time        `json:"read_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
