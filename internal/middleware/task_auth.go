package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apierrors "github.com/sprintr-app/sprintr-api/internal/errors"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

const contextKeyTask = "task"

// RequireTaskAccess loads the task named by the :id route parameter and
// resolves the caller's membership in its workspace. Non-members get 401.
func RequireTaskAccess(tasks repository.TaskRepository, members repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if taskID == "" {
			apierrors.BadRequest(c, "Invalid task ID.")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.FindByID(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Task not found.")
			} else {
				apierrors.InternalError(c, "Failed to load task.")
			}
			c.Abort()
			return
		}

		member, err := members.Find(task.WorkspaceID, userID)
		if err != nil {
			apierrors.InternalError(c, "Failed to verify workspace membership.")
			c.Abort()
			return
		}
		if member == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(contextKeyTask, *task)
		c.Set(contextKeyMember, *member)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess from context
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(contextKeyTask)
	if !exists {
		return models.Task{}, false
	}

	task, ok := value.(models.Task)
	return task, ok
}
