package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/constants"
	"github.com/sprintr-app/sprintr-api/internal/database"
	"github.com/sprintr-app/sprintr-api/internal/dto"
	apierrors "github.com/sprintr-app/sprintr-api/internal/errors"
	"github.com/sprintr-app/sprintr-api/internal/middleware"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/storage"
	"github.com/sprintr-app/sprintr-api/internal/utils"
)

// WorkspaceHandler coordinates workspace-related HTTP handlers.
type WorkspaceHandler struct {
	images storage.ImageStore
}

// NewWorkspaceHandler creates a new WorkspaceHandler. images may be nil
// when object storage is not configured.
func NewWorkspaceHandler(images storage.ImageStore) *WorkspaceHandler {
	return &WorkspaceHandler{images: images}
}

func (h *WorkspaceHandler) imageURLResolver() dto.ImageURLResolver {
	if h.images == nil {
		return nil
	}
	return h.images.PublicURL
}

// CreateWorkspace creates a workspace and makes the creator its admin
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		apierrors.BadRequest(c, "Name is required.")
		return
	}

	var imageID *string
	if file, err := c.FormFile("image"); err == nil && h.images != nil {
		id, err := h.images.Upload(c.Request.Context(), "workspaces", file)
		if err != nil {
			apierrors.InternalError(c, "Failed to upload image.")
			return
		}
		imageID = &id
	}

	inviteCode, err := utils.GenerateInviteCode(constants.InviteCodeLength)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate invite code.")
		return
	}

	workspace := models.Workspace{
		Name:       name,
		UserID:     userID,
		ImageID:    imageID,
		InviteCode: inviteCode,
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}
		member := models.Member{
			WorkspaceID: workspace.ID,
			UserID:      userID,
			Role:        models.RoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to create workspace.")
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(workspace, true, h.imageURLResolver()))
}

// ListWorkspaces returns all workspaces the user is a member of
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var memberships []models.Member
	if err := database.GetDB().
		Preload("Workspace").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch workspaces.")
		return
	}

	workspaces := make([]dto.WorkspaceDTO, len(memberships))
	for i, m := range memberships {
		workspaces[i] = dto.ToWorkspaceDTO(m.Workspace, true, h.imageURLResolver())
	}

	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

// GetWorkspace returns one workspace to a member
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", member.WorkspaceID).Error; err != nil {
		apierrors.NotFound(c, "Workspace not found.")
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(workspace, true, h.imageURLResolver()))
}

// UpdateWorkspace renames a workspace or replaces its image
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", member.WorkspaceID).Error; err != nil {
		apierrors.NotFound(c, "Workspace not found.")
		return
	}

	updates := map[string]interface{}{}
	if name := c.PostForm("name"); name != "" {
		updates["name"] = name
	}

	var replaced *string
	if file, err := c.FormFile("image"); err == nil && h.images != nil {
		id, err := h.images.Upload(c.Request.Context(), "workspaces", file)
		if err != nil {
			apierrors.InternalError(c, "Failed to upload image.")
			return
		}
		updates["image_id"] = id
		replaced = workspace.ImageID
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&workspace).Updates(updates).Error; err != nil {
			apierrors.InternalError(c, "Failed to update workspace.")
			return
		}
	}

	if replaced != nil && *replaced != "" {
		if err := h.images.Remove(c.Request.Context(), []string{*replaced}); err != nil {
			logrus.WithError(err).WithField("image_id", *replaced).Warn("failed to remove replaced workspace image")
		}
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(workspace, true, h.imageURLResolver()))
}

// DeleteWorkspace removes a workspace with everything in it. Only the
// workspace owner may do this.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", member.WorkspaceID).Error; err != nil {
		apierrors.NotFound(c, "Workspace not found.")
		return
	}

	if workspace.UserID != userID {
		apierrors.Unauthorized(c, "Only the workspace owner can delete it.")
		return
	}

	var imageIDs []string
	if workspace.ImageID != nil && *workspace.ImageID != "" {
		imageIDs = append(imageIDs, *workspace.ImageID)
	}
	var projects []models.Project
	database.GetDB().Where("workspace_id = ?", workspace.ID).Find(&projects)
	for _, p := range projects {
		if p.ImageID != nil && *p.ImageID != "" {
			imageIDs = append(imageIDs, *p.ImageID)
		}
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("workspace_id = ?", workspace.ID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Task{}, &models.Project{}, &models.Notification{}, &models.Member{}} {
			if err := tx.Where("workspace_id = ?", workspace.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&workspace).Error
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to delete workspace.")
		return
	}

	if h.images != nil && len(imageIDs) > 0 {
		if err := h.images.Remove(c.Request.Context(), imageIDs); err != nil {
			logrus.WithError(err).WithField("workspace_id", workspace.ID).Warn("failed to remove workspace images")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace deleted"})
}

// GetWorkspaceInfo returns the join-screen view of a workspace. Any
// authenticated user can see it, membership is not required.
func (h *WorkspaceHandler) GetWorkspaceInfo(c *gin.Context) {
	workspaceID := c.Param("id")

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Workspace not found.")
		} else {
			apierrors.InternalError(c, "Failed to fetch workspace.")
		}
		return
	}

	var memberCount int64
	database.GetDB().Model(&models.Member{}).Where("workspace_id = ?", workspace.ID).Count(&memberCount)

	info := dto.WorkspaceInfoDTO{
		ID:          workspace.ID,
		Name:        workspace.Name,
		MemberCount: memberCount,
	}
	if workspace.ImageID != nil && *workspace.ImageID != "" && h.images != nil {
		url := h.images.PublicURL(*workspace.ImageID)
		info.ImageURL = &url
	}

	c.JSON(http.StatusOK, info)
}

// JoinWorkspace adds the caller as a member when the invite code matches
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"inviteCode" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", c.Param("id")).Error; err != nil {
		apierrors.NotFound(c, "Workspace not found.")
		return
	}

	if workspace.InviteCode != req.InviteCode {
		apierrors.BadRequest(c, "Invalid invite code.")
		return
	}

	var existing models.Member
	err := database.GetDB().
		Where("workspace_id = ? AND user_id = ?", workspace.ID, userID).
		First(&existing).Error
	if err == nil {
		apierrors.BadRequest(c, "Already a member.")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.InternalError(c, "Failed to verify membership.")
		return
	}

	member := models.Member{
		WorkspaceID: workspace.ID,
		UserID:      userID,
		Role:        models.RoleMember,
	}
	if err := database.GetDB().Create(&member).Error; err != nil {
		apierrors.InternalError(c, "Failed to join workspace.")
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(workspace, true, h.imageURLResolver()))
}

// ResetInviteCode replaces the invite code, invalidating the old one
func (h *WorkspaceHandler) ResetInviteCode(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", member.WorkspaceID).Error; err != nil {
		apierrors.NotFound(c, "Workspace not found.")
		return
	}

	inviteCode, err := utils.GenerateInviteCode(constants.InviteCodeLength)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate invite code.")
		return
	}

	if err := database.GetDB().Model(&workspace).Update("invite_code", inviteCode).Error; err != nil {
		apierrors.InternalError(c, "Failed to reset invite code.")
		return
	}
	workspace.InviteCode = inviteCode

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(workspace, true, h.imageURLResolver()))
}

// GetAnalytics returns task metrics for the current month with deltas
// against the previous month
func (h *WorkspaceHandler) GetAnalytics(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	db := database.GetDB()
	count := func(scope func(*gorm.DB) *gorm.DB, from, to time.Time) int64 {
		var n int64
		query := db.Model(&models.Task{}).
			Where("workspace_id = ?", member.WorkspaceID).
			Where("created_at >= ? AND created_at < ?", from, to)
		scope(query).Count(&n)
		return n
	}

	all := func(q *gorm.DB) *gorm.DB { return q }
	assigned := func(q *gorm.DB) *gorm.DB { return q.Where("assignee_id = ?", member.ID) }
	completed := func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.TaskStatusDone) }
	incomplete := func(q *gorm.DB) *gorm.DB { return q.Where("status <> ?", models.TaskStatusDone) }

	analytics := dto.AnalyticsDTO{}
	analytics.TaskCount = count(all, monthStart, now)
	analytics.TaskDifference = analytics.TaskCount - count(all, lastMonthStart, monthStart)
	analytics.AssignedTaskCount = count(assigned, monthStart, now)
	analytics.AssignedTaskDifference = analytics.AssignedTaskCount - count(assigned, lastMonthStart, monthStart)
	analytics.CompletedTaskCount = count(completed, monthStart, now)
	analytics.CompletedTaskDifference = analytics.CompletedTaskCount - count(completed, lastMonthStart, monthStart)
	analytics.IncompleteTaskCount = count(incomplete, monthStart, now)
	analytics.IncompleteTaskDifference = analytics.IncompleteTaskCount - count(incomplete, lastMonthStart, monthStart)

	var projectCount, lastProjectCount int64
	db.Model(&models.Project{}).
		Where("workspace_id = ? AND created_at >= ? AND created_at < ?", member.WorkspaceID, monthStart, now).
		Count(&projectCount)
	db.Model(&models.Project{}).
		Where("workspace_id = ? AND created_at >= ? AND created_at < ?", member.WorkspaceID, lastMonthStart, monthStart).
		Count(&lastProjectCount)
	analytics.ProjectCount = projectCount
	analytics.ProjectDifference = projectCount - lastProjectCount

	c.JSON(http.StatusOK, analytics)
}

// ListWorkspaceTasks returns every task in the workspace with populated
// project and member documents
func (h *WorkspaceHandler) ListWorkspaceTasks(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var tasks []models.Task
	if err := database.GetDB().
		Preload("Project").
		Preload("Assignee").
		Preload("Assignee.User").
		Preload("Reporter").
		Preload("Reporter.User").
		Where("workspace_id = ?", member.WorkspaceID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks, h.imageURLResolver())})
}
