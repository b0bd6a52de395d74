package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Workspace struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ImageID    *string   `gorm:"type:varchar(512)" json:"image_id"`
	InviteCode string    `gorm:"type:varchar(50);index;not null" json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Members  []Member  `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Projects []Project `gorm:"foreignKey:WorkspaceID" json:"projects,omitempty"`
	Tasks    []Task    `gorm:"foreignKey:WorkspaceID" json:"tasks,omitempty"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
