package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

type Member struct {
	ID          string     `gorm:"type:uuid;primarykey" json:"id"`
	WorkspaceID string     `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user" json:"workspace_id"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user" json:"user_id"`
	Role        MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
