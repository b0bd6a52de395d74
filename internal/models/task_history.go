package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskHistoryField string

// Historized fields. Created is a sentinel row written once when the task
// is born; attachments changes are persisted but never historized.
const (
	HistoryFieldCreated     TaskHistoryField = "created"
	HistoryFieldAssigneeID  TaskHistoryField = "assigneeId"
	HistoryFieldSummary     TaskHistoryField = "summary"
	HistoryFieldDescription TaskHistoryField = "description"
	HistoryFieldStatus      TaskHistoryField = "status"
	HistoryFieldPriority    TaskHistoryField = "priority"
	HistoryFieldWorkType    TaskHistoryField = "workType"
	HistoryFieldProjectID   TaskHistoryField = "projectId"
)

// TaskHistory is an append-only audit record of one field change.
type TaskHistory struct {
	ID        string           `gorm:"type:uuid;primarykey" json:"id"`
	TaskID    string           `gorm:"type:uuid;not null;index" json:"task_id"`
	MemberID  string           `gorm:"type:uuid;not null" json:"member_id"`
	Field     TaskHistoryField `gorm:"type:varchar(30);not null" json:"field"`
	FromValue *string          `gorm:"type:text" json:"from_value"`
	ToValue   *string          `gorm:"type:text" json:"to_value"`
	CreatedAt time.Time        `json:"created_at"`

	// Relations
	Actor Member `gorm:"foreignKey:MemberID" json:"actor,omitempty"`
}

func (h *TaskHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
