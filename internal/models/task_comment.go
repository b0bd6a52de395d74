package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskComment struct {
	ID          string                      `gorm:"type:uuid;primarykey" json:"id"`
	TaskID      string                      `gorm:"type:uuid;not null;index" json:"task_id"`
	MemberID    string                      `gorm:"type:uuid;not null" json:"member_id"`
	Body        string                      `gorm:"type:text;not null" json:"body"`
	Attachments datatypes.JSONSlice[string] `json:"attachments"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	// Relations
	Task   Task   `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Author Member `gorm:"foreignKey:MemberID" json:"author,omitempty"`
}

func (c *TaskComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
