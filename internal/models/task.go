package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo              TaskStatus = "TODO"
	TaskStatusInProgress        TaskStatus = "IN_PROGRESS"
	TaskStatusTesting           TaskStatus = "TESTING"
	TaskStatusBackedTodo        TaskStatus = "BACKED_TODO"
	TaskStatusWaitingForBuild   TaskStatus = "WAITING_FOR_BUILD"
	TaskStatusImprovement       TaskStatus = "IMPROVEMENT"
	TaskStatusSuggestion        TaskStatus = "SUGGESTION"
	TaskStatusInvalid           TaskStatus = "INVALID"
	TaskStatusUnableToChange    TaskStatus = "UNABLE_TO_CHANGE"
	TaskStatusUnableToReplicate TaskStatus = "UNABLE_TO_REPLICATE"
	TaskStatusNotMentionedByPM  TaskStatus = "NOT_MENTIONED_BY_PM"
	TaskStatusDone              TaskStatus = "DONE"
)

// TaskStatusLabels maps statuses to their board column headings.
var TaskStatusLabels = map[TaskStatus]string{
	TaskStatusTodo:              "TO DO",
	TaskStatusInProgress:        "IN PROGRESS",
	TaskStatusTesting:           "TESTING",
	TaskStatusBackedTodo:        "BACKED TODO",
	TaskStatusWaitingForBuild:   "WAITING FOR BUILD",
	TaskStatusImprovement:       "IMPROVEMENT",
	TaskStatusSuggestion:        "SUGGESTION",
	TaskStatusInvalid:           "INVALID",
	TaskStatusUnableToChange:    "UNABLE TO CHANGE",
	TaskStatusUnableToReplicate: "UNABLE TO REPLICATE",
	TaskStatusNotMentionedByPM:  "NOT MENTION BY PM",
	TaskStatusDone:              "DONE",
}

func (s TaskStatus) Valid() bool {
	_, ok := TaskStatusLabels[s]
	return ok
}

// Label returns the human heading for the status, falling back to the raw value.
func (s TaskStatus) Label() string {
	if label, ok := TaskStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

type TaskWorkType string

const (
	WorkTypeSuggestion  TaskWorkType = "SUGGESTION"
	WorkTypeTask        TaskWorkType = "TASK"
	WorkTypeBug         TaskWorkType = "BUG"
	WorkTypeStory       TaskWorkType = "STORY"
	WorkTypeImprovement TaskWorkType = "IMPROVEMENT"
)

var TaskWorkTypeLabels = map[TaskWorkType]string{
	WorkTypeSuggestion:  "Suggestions",
	WorkTypeTask:        "Task",
	WorkTypeBug:         "Bug",
	WorkTypeStory:       "Story",
	WorkTypeImprovement: "Improvment",
}

func (w TaskWorkType) Valid() bool {
	_, ok := TaskWorkTypeLabels[w]
	return ok
}

func (w TaskWorkType) Label() string {
	if label, ok := TaskWorkTypeLabels[w]; ok {
		return label
	}
	return string(w)
}

type TaskPriority string

const (
	PriorityUrgent TaskPriority = "URGENT"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityLow    TaskPriority = "LOW"
)

var TaskPriorityLabels = map[TaskPriority]string{
	PriorityUrgent: "Urgent",
	PriorityHigh:   "High",
	PriorityMedium: "Medium",
	PriorityLow:    "Low",
}

func (p TaskPriority) Valid() bool {
	_, ok := TaskPriorityLabels[p]
	return ok
}

func (p TaskPriority) Label() string {
	if label, ok := TaskPriorityLabels[p]; ok {
		return label
	}
	return string(p)
}

type Task struct {
	ID          string                      `gorm:"type:uuid;primarykey" json:"id"`
	WorkspaceID string                      `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ProjectID   string                      `gorm:"type:uuid;not null;index" json:"project_id"`
	ReporterID  *string                     `gorm:"type:uuid" json:"reporter_id"`
	AssigneeID  string                      `gorm:"type:uuid;not null;index" json:"assignee_id"`
	Name        string                      `gorm:"type:varchar(50);not null;index" json:"name"`
	Summary     string                      `gorm:"type:varchar(512);not null" json:"summary"`
	Description string                      `gorm:"type:text" json:"description"`
	Status      TaskStatus                  `gorm:"type:varchar(30);not null;index" json:"status"`
	WorkType    TaskWorkType                `gorm:"type:varchar(20);not null" json:"work_type"`
	Priority    *TaskPriority               `gorm:"type:varchar(20)" json:"priority"`
	Position    int                         `gorm:"not null" json:"position"`
	Attachments datatypes.JSONSlice[string] `json:"attachments"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Project   Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Reporter  *Member   `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Assignee  Member    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
