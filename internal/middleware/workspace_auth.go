package middleware

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/sprintr-app/sprintr-api/internal/errors"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

const contextKeyMember = "member"

// RequireWorkspaceAccess resolves the caller's membership in the workspace
// named by the :id route parameter. Non-members get 401, never 403 or 404,
// so the response does not confirm the workspace exists.
func RequireWorkspaceAccess(members repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("id")
		if workspaceID == "" {
			apierrors.BadRequest(c, "Invalid workspace ID.")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		member, err := members.Find(workspaceID, userID)
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

		c.Set(contextKeyMember, *member)
		c.Next()
	}
}

// RequireWorkspaceAdmin allows only members with the ADMIN role. It must
// run after RequireWorkspaceAccess.
func RequireWorkspaceAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMember(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if member.Role != models.RoleAdmin {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetMember retrieves the resolved workspace membership from context
func GetMember(c *gin.Context) (models.Member, bool) {
	value, exists := c.Get(contextKeyMember)
	if !exists {
		return models.Member{}, false
	}

	member, ok := value.(models.Member)
	return member, ok
}
