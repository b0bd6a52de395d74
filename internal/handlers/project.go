package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/database"
	"github.com/sprintr-app/sprintr-api/internal/dto"
	apierrors "github.com/sprintr-app/sprintr-api/internal/errors"
	"github.com/sprintr-app/sprintr-api/internal/middleware"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/storage"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	images storage.ImageStore
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(images storage.ImageStore) *ProjectHandler {
	return &ProjectHandler{images: images}
}

func (h *ProjectHandler) imageURLResolver() dto.ImageURLResolver {
	if h.images == nil {
		return nil
	}
	return h.images.PublicURL
}

// findProject loads a project scoped to the workspace from the route
func (h *ProjectHandler) findProject(c *gin.Context, workspaceID string) (*models.Project, bool) {
	var project models.Project
	err := database.GetDB().
		First(&project, "id = ? AND workspace_id = ?", c.Param("projectId"), workspaceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Project not found.")
		} else {
			apierrors.InternalError(c, "Failed to fetch project.")
		}
		return nil, false
	}
	return &project, true
}

// ListProjects returns the workspace's projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var projects []models.Project
	if err := database.GetDB().
		Where("workspace_id = ?", member.WorkspaceID).
		Order("created_at ASC").
		Find(&projects).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch projects.")
		return
	}

	items := make([]dto.ProjectDTO, len(projects))
	for i, p := range projects {
		items[i] = dto.ToProjectDTO(p, h.imageURLResolver())
	}

	c.JSON(http.StatusOK, gin.H{"projects": items})
}

// CreateProject creates a project in the workspace
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		apierrors.BadRequest(c, "Name is required.")
		return
	}

	var imageID *string
	if file, err := c.FormFile("image"); err == nil && h.images != nil {
		id, err := h.images.Upload(c.Request.Context(), "projects", file)
		if err != nil {
			apierrors.InternalError(c, "Failed to upload image.")
			return
		}
		imageID = &id
	}

	project := models.Project{
		WorkspaceID: member.WorkspaceID,
		Name:        name,
		ImageID:     imageID,
	}
	if err := database.GetDB().Create(&project).Error; err != nil {
		apierrors.InternalError(c, "Failed to create project.")
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(project, h.imageURLResolver()))
}

// GetProject returns one project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	project, ok := h.findProject(c, member.WorkspaceID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project, h.imageURLResolver()))
}

// UpdateProject renames a project or replaces its image
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	project, ok := h.findProject(c, member.WorkspaceID)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if name := c.PostForm("name"); name != "" {
		updates["name"] = name
	}

	var replaced *string
	if file, err := c.FormFile("image"); err == nil && h.images != nil {
		id, err := h.images.Upload(c.Request.Context(), "projects", file)
		if err != nil {
			apierrors.InternalError(c, "Failed to upload image.")
			return
		}
		updates["image_id"] = id
		replaced = project.ImageID
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(project).Updates(updates).Error; err != nil {
			apierrors.InternalError(c, "Failed to update project.")
			return
		}
	}

	if replaced != nil && *replaced != "" {
		if err := h.images.Remove(c.Request.Context(), []string{*replaced}); err != nil {
			logrus.WithError(err).WithField("image_id", *replaced).Warn("failed to remove replaced project image")
		}
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project, h.imageURLResolver()))
}

// DeleteProject removes a project together with its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	project, ok := h.findProject(c, member.WorkspaceID)
	if !ok {
		return
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to delete project.")
		return
	}

	if h.images != nil && project.ImageID != nil && *project.ImageID != "" {
		if err := h.images.Remove(c.Request.Context(), []string{*project.ImageID}); err != nil {
			logrus.WithError(err).WithField("project_id", project.ID).Warn("failed to remove project image")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
