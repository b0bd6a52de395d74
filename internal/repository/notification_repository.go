package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/models"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification row
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByUser lists a user's notifications, newest first
func (r *GormNotificationRepository) ListByUser(userID, workspaceID string, limit int) ([]models.Notification, error) {
	query := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if workspaceID != "" {
		query = query.Where("workspace_id = ?", workspaceID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notifications []models.Notification
	err := query.Find(&notifications).Error
	return notifications, err
}

// CountUnread counts the user's unread notifications
func (r *GormNotificationRepository) CountUnread(userID, workspaceID string) (int64, error) {
	query := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID)
	if workspaceID != "" {
		query = query.Where("workspace_id = ?", workspaceID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// MarkRead marks one of the user's notifications read and returns it
func (r *GormNotificationRepository) MarkRead(id, userID string) (*models.Notification, error) {
	now := time.Now()
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", now)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var notification models.Notification
	if err := r.db.First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkAllRead marks all of the user's unread notifications read
func (r *GormNotificationRepository) MarkAllRead(userID, workspaceID string) ([]models.Notification, error) {
	query := r.db.
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC")
	if workspaceID != "" {
		query = query.Where("workspace_id = ?", workspaceID)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	if len(notifications) == 0 {
		return notifications, nil
	}

	now := time.Now()
	ids := make([]string, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ID
	}

	if err := r.db.Model(&models.Notification{}).
		Where("id IN ?", ids).
		Update("read_at", now).Error; err != nil {
		return nil, err
	}

	for i := range notifications {
		readAt := now
		notifications[i].ReadAt = &readAt
	}
	return notifications, nil
}
