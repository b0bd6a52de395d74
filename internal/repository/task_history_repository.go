package repository

import (
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/models"
)

// GormTaskHistoryRepository is a GORM implementation of TaskHistoryRepository
type GormTaskHistoryRepository struct {
	db *gorm.DB
}

// NewTaskHistoryRepository creates a new TaskHistoryRepository
func NewTaskHistoryRepository(db *gorm.DB) TaskHistoryRepository {
	return &GormTaskHistoryRepository{db: db}
}

// Append inserts history rows
func (r *GormTaskHistoryRepository) Append(entries []models.TaskHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(&entries).Error
}

// ListByTask lists history rows for a task, newest first
func (r *GormTaskHistoryRepository) ListByTask(taskID string) ([]models.TaskHistory, error) {
	var entries []models.TaskHistory
	err := r.db.
		Preload("Actor").
		Preload("Actor.User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
