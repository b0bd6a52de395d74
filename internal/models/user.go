package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"type:uuid;primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"type:varchar(255)" json:"full_name"`
	Username     string    `gorm:"type:varchar(255)" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName resolves the identity shown in notifications and member lists.
// Fallback order: full name, username, email local part, "User".
func (u *User) DisplayName() string {
	if u == nil {
		return "User"
	}
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	if u.Email != "" {
		if local, _, found := strings.Cut(u.Email, "@"); found && local != "" {
			return local
		}
	}
	return "User"
}
