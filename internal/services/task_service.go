package services

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/constants"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrSummaryRequired       = errors.New("summary is required")
	ErrInvalidStatus         = errors.New("invalid task status")
	ErrInvalidWorkType       = errors.New("invalid work type")
	ErrInvalidPriority       = errors.New("invalid priority")
	ErrInvalidPosition       = errors.New("position is out of range")
	ErrTasksOutsideWorkspace = errors.New("one or more tasks belong to another workspace")
	ErrNoTaskUpdates         = errors.New("at least one task update is required")
)

// TaskService handles task mutations and their audit trail
type TaskService struct {
	tasks   repository.TaskRepository
	history repository.TaskHistoryRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks repository.TaskRepository, history repository.TaskHistoryRepository) *TaskService {
	return &TaskService{
		tasks:   tasks,
		history: history,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	WorkspaceID string
	ProjectID   string
	ProjectName string
	ReporterID  string
	AssigneeID  string
	Summary     string
	Description string
	Status      models.TaskStatus
	WorkType    models.TaskWorkType
	Priority    *models.TaskPriority
	Attachments []string
}

// UpdateTaskInput represents a partial task update. Nil fields are left
// untouched; ClearPriority removes the priority outright.
type UpdateTaskInput struct {
	Summary       *string
	Description   *string
	Status        *models.TaskStatus
	WorkType      *models.TaskWorkType
	Priority      *models.TaskPriority
	ClearPriority bool
	ProjectID     *string
	AssigneeID    *string
	Position      *int
	Attachments   *[]string
}

// BulkUpdateItem moves one task on the board
type BulkUpdateItem struct {
	ID       string
	Status   *models.TaskStatus
	Position *int
}

// CreateTask allocates a task code, places the task at the bottom of its
// status column and writes the initial history row.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Summary == "" {
		return nil, ErrSummaryRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.WorkType == "" {
		input.WorkType = models.WorkTypeTask
	}
	if !input.WorkType.Valid() {
		return nil, ErrInvalidWorkType
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	code, err := NextTaskCode(s.tasks, input.ProjectID, BuildProjectCode(input.ProjectName))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate task code: %w", err)
	}

	position := constants.MinTaskPosition
	lowest, err := s.tasks.LowestPosition(input.WorkspaceID, input.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve column position: %w", err)
	}
	if lowest != nil {
		position = *lowest + constants.TaskPositionStep
	}

	reporterID := input.ReporterID
	task := &models.Task{
		WorkspaceID: input.WorkspaceID,
		ProjectID:   input.ProjectID,
		ReporterID:  &reporterID,
		AssigneeID:  input.AssigneeID,
		Name:        code,
		Summary:     input.Summary,
		Description: input.Description,
		Status:      input.Status,
		WorkType:    input.WorkType,
		Priority:    input.Priority,
		Position:    position,
		Attachments: datatypes.NewJSONSlice(input.Attachments),
	}

	if err := s.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	entry := models.TaskHistory{
		TaskID:   task.ID,
		MemberID: input.ReporterID,
		Field:    models.HistoryFieldCreated,
	}
	if err := s.history.Append([]models.TaskHistory{entry}); err != nil {
		return nil, fmt.Errorf("failed to record task creation: %w", err)
	}

	return task, nil
}

// UpdateTask applies a partial update and historizes every field whose new
// value differs from the stored one. Attachments and position changes are
// persisted without a history row. The returned entries let callers react
// to specific changes, such as a new assignee.
func (s *TaskService) UpdateTask(taskID, actorMemberID string, input UpdateTaskInput) (*models.Task, []models.TaskHistory, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	updates := map[string]interface{}{}
	var entries []models.TaskHistory

	record := func(field models.TaskHistoryField, from, to *string) {
		entries = append(entries, models.TaskHistory{
			TaskID:    task.ID,
			MemberID:  actorMemberID,
			Field:     field,
			FromValue: from,
			ToValue:   to,
		})
	}

	if input.Summary != nil {
		if *input.Summary == "" {
			return nil, nil, ErrSummaryRequired
		}
		if *input.Summary != task.Summary {
			updates["summary"] = *input.Summary
			record(models.HistoryFieldSummary, nonEmptyPtr(task.Summary), nonEmptyPtr(*input.Summary))
		}
	}
	if input.Description != nil && *input.Description != task.Description {
		updates["description"] = *input.Description
		record(models.HistoryFieldDescription, nonEmptyPtr(task.Description), nonEmptyPtr(*input.Description))
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, nil, ErrInvalidStatus
		}
		if *input.Status != task.Status {
			updates["status"] = *input.Status
			record(models.HistoryFieldStatus, nonEmptyPtr(string(task.Status)), nonEmptyPtr(string(*input.Status)))
		}
	}
	if input.WorkType != nil {
		if !input.WorkType.Valid() {
			return nil, nil, ErrInvalidWorkType
		}
		if *input.WorkType != task.WorkType {
			updates["work_type"] = *input.WorkType
			record(models.HistoryFieldWorkType, nonEmptyPtr(string(task.WorkType)), nonEmptyPtr(string(*input.WorkType)))
		}
	}
	if input.ClearPriority {
		if task.Priority != nil {
			updates["priority"] = nil
			record(models.HistoryFieldPriority, nonEmptyPtr(string(*task.Priority)), nil)
		}
	} else if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, nil, ErrInvalidPriority
		}
		if task.Priority == nil || *input.Priority != *task.Priority {
			updates["priority"] = *input.Priority
			var from *string
			if task.Priority != nil {
				from = nonEmptyPtr(string(*task.Priority))
			}
			record(models.HistoryFieldPriority, from, nonEmptyPtr(string(*input.Priority)))
		}
	}
	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		updates["project_id"] = *input.ProjectID
		record(models.HistoryFieldProjectID, nonEmptyPtr(task.ProjectID), nonEmptyPtr(*input.ProjectID))
	}
	if input.AssigneeID != nil && *input.AssigneeID != task.AssigneeID {
		updates["assignee_id"] = *input.AssigneeID
		record(models.HistoryFieldAssigneeID, nonEmptyPtr(task.AssigneeID), nonEmptyPtr(*input.AssigneeID))
	}
	if input.Position != nil {
		if *input.Position < constants.MinTaskPosition || *input.Position > constants.MaxTaskPosition {
			return nil, nil, ErrInvalidPosition
		}
		if *input.Position != task.Position {
			updates["position"] = *input.Position
		}
	}
	if input.Attachments != nil {
		updates["attachments"] = datatypes.NewJSONSlice(*input.Attachments)
	}

	if len(updates) == 0 {
		return task, nil, nil
	}

	updated, err := s.tasks.ApplyUpdates(task.ID, updates)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update task: %w", err)
	}

	if len(entries) > 0 {
		if err := s.history.Append(entries); err != nil {
			return nil, nil, fmt.Errorf("failed to record task changes: %w", err)
		}
	}

	return updated, entries, nil
}

// BulkUpdate moves several tasks at once, typically after a board drag.
// Every task must live in workspaceID; a task from another workspace
// rejects the whole batch before any write.
func (s *TaskService) BulkUpdate(workspaceID, actorMemberID string, items []BulkUpdateItem) ([]models.Task, error) {
	if len(items) == 0 {
		return nil, ErrNoTaskUpdates
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Status != nil && !item.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		if item.Position != nil && (*item.Position < constants.MinTaskPosition || *item.Position > constants.MaxTaskPosition) {
			return nil, ErrInvalidPosition
		}
		ids = append(ids, item.ID)
	}

	tasks, err := s.tasks.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	if len(tasks) != len(items) {
		return nil, ErrTaskNotFound
	}

	byID := make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		if tasks[i].WorkspaceID != workspaceID {
			return nil, ErrTasksOutsideWorkspace
		}
		byID[tasks[i].ID] = &tasks[i]
	}

	var entries []models.TaskHistory
	updated := make([]models.Task, 0, len(items))

	for _, item := range items {
		task := byID[item.ID]

		updates := map[string]interface{}{}
		if item.Status != nil && *item.Status != task.Status {
			updates["status"] = *item.Status
			entries = append(entries, models.TaskHistory{
				TaskID:    task.ID,
				MemberID:  actorMemberID,
				Field:     models.HistoryFieldStatus,
				FromValue: nonEmptyPtr(string(task.Status)),
				ToValue:   nonEmptyPtr(string(*item.Status)),
			})
		}
		if item.Position != nil && *item.Position != task.Position {
			updates["position"] = *item.Position
		}

		if len(updates) == 0 {
			updated = append(updated, *task)
			continue
		}

		fresh, err := s.tasks.ApplyUpdates(task.ID, updates)
		if err != nil {
			return nil, fmt.Errorf("failed to update task %s: %w", task.ID, err)
		}
		updated = append(updated, *fresh)
	}

	if len(entries) > 0 {
		if err := s.history.Append(entries); err != nil {
			return nil, fmt.Errorf("failed to record task changes: %w", err)
		}
	}

	return updated, nil
}

// nonEmptyPtr returns a pointer to s, or nil for the empty string
func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
