package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/database"
	"github.com/sprintr-app/sprintr-api/internal/dto"
	apierrors "github.com/sprintr-app/sprintr-api/internal/errors"
	"github.com/sprintr-app/sprintr-api/internal/middleware"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
	"github.com/sprintr-app/sprintr-api/internal/services"
	"github.com/sprintr-app/sprintr-api/internal/storage"
	"github.com/sprintr-app/sprintr-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
	aiService   *services.AIService
	notifier    *services.Notifier
	tasks       repository.TaskRepository
	history     repository.TaskHistoryRepository
	members     repository.MemberRepository
	images      storage.ImageStore
}

// NewTaskHandler creates a new TaskHandler. aiService and images may be
// nil when the corresponding integrations are not configured.
func NewTaskHandler(
	taskService *services.TaskService,
	aiService *services.AIService,
	notifier *services.Notifier,
	tasks repository.TaskRepository,
	history repository.TaskHistoryRepository,
	members repository.MemberRepository,
	images storage.ImageStore,
) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		aiService:   aiService,
		notifier:    notifier,
		tasks:       tasks,
		history:     history,
		members:     members,
		images:      images,
	}
}

func (h *TaskHandler) imageURLResolver() dto.ImageURLResolver {
	if h.images == nil {
		return nil
	}
	return h.images.PublicURL
}

// actor resolves the notification identity of the acting member
func (h *TaskHandler) actor(member models.Member) services.Actor {
	actor := services.Actor{UserID: member.UserID, MemberID: member.ID, Name: "User"}
	full, err := h.members.FindByIDWithUser(member.ID)
	if err != nil {
		logrus.WithError(err).WithField("member_id", member.ID).Warn("failed to resolve acting member")
		return actor
	}
	actor.Name = full.User.DisplayName()
	return actor
}

// loadTask reloads a task with its populated relations
func (h *TaskHandler) loadTask(taskID string) (*models.Task, error) {
	var task models.Task
	err := database.GetDB().
		Preload("Project").
		Preload("Assignee").
		Preload("Assignee.User").
		Preload("Reporter").
		Preload("Reporter.User").
		First(&task, "id = ?", taskID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns tasks in a workspace, optionally filtered by project,
// assignee, status or a search term over summary and code
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workspaceID := c.Query("workspaceId")
	if workspaceID == "" {
		apierrors.BadRequest(c, "workspaceId is required.")
		return
	}

	member, err := h.members.Find(workspaceID, userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to verify workspace membership.")
		return
	}
	if member == nil {
		apierrors.Unauthorized(c, "")
		return
	}

	if status := c.Query("status"); status != "" && !models.TaskStatus(status).Valid() {
		apierrors.BadRequest(c, "Invalid status.")
		return
	}

	filters := func(db *gorm.DB) *gorm.DB {
		db = db.Where("workspace_id = ?", workspaceID)
		if projectID := c.Query("projectId"); projectID != "" {
			db = db.Where("project_id = ?", projectID)
		}
		if assigneeID := c.Query("assigneeId"); assigneeID != "" {
			db = db.Where("assignee_id = ?", assigneeID)
		}
		if status := c.Query("status"); status != "" {
			db = db.Where("status = ?", status)
		}
		if search := c.Query("search"); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			db = db.Where("LOWER(summary) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
		}
		return db
	}

	var total int64
	if err := filters(database.GetDB().Model(&models.Task{})).Count(&total).Error; err != nil {
		apierrors.InternalError(c, "Failed to count tasks.")
		return
	}

	params := utils.GetPaginationParams(c)

	var tasks []models.Task
	err = filters(database.GetDB()).
		Preload("Project").
		Preload("Assignee").
		Preload("Assignee.User").
		Preload("Reporter").
		Preload("Reporter.User").
		Scopes(database.Paginate(params)).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks, h.imageURLResolver()),
		"total": total,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateTask creates a task and notifies its assignee
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		WorkspaceID string               `json:"workspaceId" binding:"required"`
		ProjectID   string               `json:"projectId" binding:"required"`
		AssigneeID  string               `json:"assigneeId" binding:"required"`
		Summary     string               `json:"summary" binding:"required"`
		Description string               `json:"description"`
		Status      models.TaskStatus    `json:"status"`
		WorkType    models.TaskWorkType  `json:"workType"`
		Priority    *models.TaskPriority `json:"priority"`
		Attachments []string             `json:"attachments"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.members.Find(req.WorkspaceID, userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to verify workspace membership.")
		return
	}
	if member == nil {
		apierrors.Unauthorized(c, "")
		return
	}

	var project models.Project
	if err := database.GetDB().
		First(&project, "id = ? AND workspace_id = ?", req.ProjectID, req.WorkspaceID).Error; err != nil {
		apierrors.NotFound(c, "Project not found.")
		return
	}

	assignee, err := h.members.FindByID(req.AssigneeID)
	if err != nil || assignee.WorkspaceID != req.WorkspaceID {
		apierrors.BadRequest(c, "Invalid assignee.")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		WorkspaceID: req.WorkspaceID,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		ReporterID:  member.ID,
		AssigneeID:  req.AssigneeID,
		Summary:     req.Summary,
		Description: req.Description,
		Status:      req.Status,
		WorkType:    req.WorkType,
		Priority:    req.Priority,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.notifier.TaskCreated(c.Request.Context(), h.actor(*member), task)

	created, err := h.loadTask(task.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch task.")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*created, h.imageURLResolver()))
}

// GetTask returns one task with populated documents
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found.")
		return
	}

	loaded, err := h.loadTask(task.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch task.")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*loaded, h.imageURLResolver()))
}

// UpdateTask applies a partial update and notifies a newly assigned member
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found.")
		return
	}
	member, _ := middleware.GetMember(c)

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{}
	bad := func() { apierrors.BadRequest(c, "Invalid request body") }

	if v, ok := raw["summary"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			bad()
			return
		}
		input.Summary = &s
	}
	if v, ok := raw["description"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			bad()
			return
		}
		input.Description = &s
	}
	if v, ok := raw["status"]; ok {
		var s models.TaskStatus
		if err := json.Unmarshal(v, &s); err != nil {
			bad()
			return
		}
		input.Status = &s
	}
	if v, ok := raw["workType"]; ok {
		var s models.TaskWorkType
		if err := json.Unmarshal(v, &s); err != nil {
			bad()
			return
		}
		input.WorkType = &s
	}
	if v, ok := raw["priority"]; ok {
		if string(v) == "null" {
			input.ClearPriority = true
		} else {
			var p models.TaskPriority
			if err := json.Unmarshal(v, &p); err != nil {
				bad()
				return
			}
			input.Priority = &p
		}
	}
	if v, ok := raw["projectId"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			bad()
			return
		}
		var project models.Project
		if err := database.GetDB().
			First(&project, "id = ? AND workspace_id = ?", s, task.WorkspaceID).Error; err != nil {
			apierrors.NotFound(c, "Project not found.")
			return
		}
		input.ProjectID = &s
	}
	if v, ok := raw["assigneeId"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			bad()
			return
		}
		assignee, err := h.members.FindByID(s)
		if err != nil || assignee.WorkspaceID != task.WorkspaceID {
			apierrors.BadRequest(c, "Invalid assignee.")
			return
		}
		input.AssigneeID = &s
	}
	if v, ok := raw["position"]; ok {
		var p int
		if err := json.Unmarshal(v, &p); err != nil {
			bad()
			return
		}
		input.Position = &p
	}
	if v, ok := raw["attachments"]; ok {
		var a []string
		if err := json.Unmarshal(v, &a); err != nil {
			bad()
			return
		}
		input.Attachments = &a
	}

	updated, entries, err := h.taskService.UpdateTask(task.ID, member.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	for _, entry := range entries {
		if entry.Field == models.HistoryFieldAssigneeID {
			h.notifier.TaskAssigned(c.Request.Context(), h.actor(member), updated)
			break
		}
	}

	loaded, err := h.loadTask(updated.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch task.")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*loaded, h.imageURLResolver()))
}

// DeleteTask removes a task with its comments and history
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found.")
		return
	}

	if err := h.tasks.Delete(task.ID); err != nil {
		apierrors.InternalError(c, "Failed to delete task.")
		return
	}

	if h.images != nil && len(task.Attachments) > 0 {
		if err := h.images.Remove(c.Request.Context(), task.Attachments); err != nil {
			logrus.WithError(err).WithField("task_id", task.ID).Warn("failed to remove task attachments")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// ListComments returns a task's comments with populated authors,
// oldest first
func (h *TaskHandler) ListComments(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found.")
		return
	}

	var comments []models.TaskComment
	if err := database.GetDB().
		Preload("Author").
		Preload("Author.User").
		Where("task_id = ?", task.ID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch comments.")
		return
	}

	items := make([]dto.TaskCommentDTO, len(comments))
	for i, comment := range comments {
		items[i] = dto.ToTaskCommentDTO(comment)
	}

	c.JSON(http.StatusOK, gin.H{"comments": items})
}

// CreateComment adds a comment and notifies watchers and mentions
func (h *TaskHandler) CreateComment(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found.")
		return
	}
	member, _ := middleware.GetMember(c)

	type CreateCommentRequest struct {
		Body        string   `json:"body" binding:"required"`
		Attachments []string `json:"attachments"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment := models.TaskComment{
		TaskID:      task.ID,
		MemberID:    member.ID,
		Body:        req.Body,
		Attachments: req.Attachments,
	}
	if err := database.GetDB().Create(&comment).Error; err != nil {
		apierrors.InternalError(c, "Failed to create comment.")
		return
	}

	h.notifier.CommentAdded(c.Request.Context(), h.actor(member), &task, req.Body)

	if err := database.GetDB().
		Preload("Author").
		Preload("Author.User").
		First(&comment, "id = ?", comment.ID).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch comment.")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskCommentDTO(comment))
}

// ListHistory returns a task's audit trail, newest first
func (h *TaskHandler) ListHistory(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found.")
		return
	}

	entries, err := h.history.ListByTask(task.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch history.")
		return
	}

	items := make([]dto.TaskHistoryDTO, len(entries))
	for i, entry := range entries {
		items[i] = dto.ToTaskHistoryDTO(entry)
	}

	c.JSON(http.StatusOK, gin.H{"history": items})
}

// BulkUpdate moves several tasks after a board drag. Every task must
// belong to one workspace the caller is a member of.
func (h *TaskHandler) BulkUpdate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type BulkUpdateRequest struct {
		Tasks []struct {
			ID       string             `json:"id" binding:"required"`
			Status   *models.TaskStatus `json:"status" binding:"required"`
			Position *int               `json:"position" binding:"required"`
		} `json:"tasks" binding:"required,min=1"`
	}

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ids := make([]string, len(req.Tasks))
	for i, item := range req.Tasks {
		ids[i] = item.ID
	}

	found, err := h.tasks.FindByIDs(ids)
	if err != nil {
		apierrors.InternalError(c, "Failed to load tasks.")
		return
	}
	if len(found) != len(ids) {
		apierrors.NotFound(c, "Task not found.")
		return
	}

	workspaceID := found[0].WorkspaceID
	for _, task := range found {
		if task.WorkspaceID != workspaceID {
			apierrors.Unauthorized(c, "")
			return
		}
	}

	member, err := h.members.Find(workspaceID, userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to verify workspace membership.")
		return
	}
	if member == nil {
		apierrors.Unauthorized(c, "")
		return
	}

	items := make([]services.BulkUpdateItem, len(req.Tasks))
	for i, item := range req.Tasks {
		items[i] = services.BulkUpdateItem{ID: item.ID, Status: item.Status, Position: item.Position}
	}

	updated, err := h.taskService.BulkUpdate(workspaceID, member.ID, items)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(updated, h.imageURLResolver())})
}

// SuggestTasks drafts tasks from free-form text using the AI service
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI suggestions are not configured.")
		return
	}

	type SuggestRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.aiService.DraftTasksFromText(c.Request.Context(), req.Text)
	if err != nil {
		logrus.WithError(err).Error("task suggestion failed")
		apierrors.InternalError(c, "Failed to generate suggestions.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found.")
	case errors.Is(err, services.ErrTasksOutsideWorkspace):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrSummaryRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidWorkType),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidPosition),
		errors.Is(err, services.ErrNoTaskUpdates):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
