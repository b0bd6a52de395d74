package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/models"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Find resolves a workspace membership. A missing row is not an error:
// callers treat nil as "not a member" and answer 401.
func (r *GormMemberRepository) Find(workspaceID, userID string) (*models.Member, error) {
	var member models.Member
	err := r.db.
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// FindByID finds a member by ID
func (r *GormMemberRepository) FindByID(id string) (*models.Member, error) {
	var member models.Member
	if err := r.db.First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByIDWithUser finds a member by ID with the user record preloaded
func (r *GormMemberRepository) FindByIDWithUser(id string) (*models.Member, error) {
	var member models.Member
	if err := r.db.Preload("User").First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByWorkspace lists the members of a workspace with users preloaded
func (r *GormMemberRepository) ListByWorkspace(workspaceID string) ([]models.Member, error) {
	var members []models.Member
	err := r.db.
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Find(&members).Error
	return members, err
}

// CountByWorkspace counts the members of a workspace
func (r *GormMemberRepository) CountByWorkspace(workspaceID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Member{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}

// Create creates a new member
func (r *GormMemberRepository) Create(member *models.Member) error {
	return r.db.Create(member).Error
}

// UpdateRole updates a member's role
func (r *GormMemberRepository) UpdateRole(id string, role models.MemberRole) error {
	return r.db.Model(&models.Member{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// Delete removes a member
func (r *GormMemberRepository) Delete(id string) error {
	return r.db.Delete(&models.Member{}, "id = ?", id).Error
}
