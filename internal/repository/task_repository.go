package repository

import (
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDs finds all tasks whose ID is in ids
func (r *GormTaskRepository) FindByIDs(ids []string) ([]models.Task, error) {
	var tasks []models.Task
	if len(ids) == 0 {
		return tasks, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&tasks).Error
	return tasks, err
}

// NamesByPrefix lists existing task codes in a project matching "prefix-%".
// The caller extracts the numeric suffixes; this only narrows the scan.
func (r *GormTaskRepository) NamesByPrefix(projectID, prefix string) ([]string, error) {
	var names []string
	err := r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Where("name LIKE ?", prefix+"-%").
		Pluck("name", &names).Error
	return names, err
}

// LowestPosition returns the smallest position in a status column, or nil
// when the column is empty.
func (r *GormTaskRepository) LowestPosition(workspaceID string, status models.TaskStatus) (*int, error) {
	var tasks []models.Task
	err := r.db.
		Select("position").
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		Order("position ASC").
		Limit(1).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0].Position, nil
}

// ApplyUpdates applies a partial column update and returns the fresh row
func (r *GormTaskRepository) ApplyUpdates(id string, updates map[string]interface{}) (*models.Task, error) {
	if err := r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

// Delete hard-deletes a task with its comments and history
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TaskComment{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.TaskHistory{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, "id = ?", id).Error
	})
}
