package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/database"
	"github.com/sprintr-app/sprintr-api/internal/dto"
	apierrors "github.com/sprintr-app/sprintr-api/internal/errors"
	"github.com/sprintr-app/sprintr-api/internal/middleware"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

// MemberHandler coordinates workspace member HTTP handlers.
type MemberHandler struct {
	members repository.MemberRepository
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members repository.MemberRepository) *MemberHandler {
	return &MemberHandler{members: members}
}

// ListMembers returns the workspace members joined with their identities
func (h *MemberHandler) ListMembers(c *gin.Context) {
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	members, err := h.members.ListByWorkspace(member.WorkspaceID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch members.")
		return
	}

	items := make([]dto.MemberDTO, len(members))
	for i, m := range members {
		items[i] = dto.ToMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"members": items})
}

// UpdateMemberRole changes a member's role. Only the workspace owner can
// do this, and the owner's own membership stays ADMIN.
func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	actor, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateRoleRequest struct {
		Role models.MemberRole `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		apierrors.BadRequest(c, "Invalid role.")
		return
	}

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", actor.WorkspaceID).Error; err != nil {
		apierrors.NotFound(c, "Workspace not found.")
		return
	}
	if workspace.UserID != userID {
		apierrors.Unauthorized(c, "Only the workspace owner can change roles.")
		return
	}

	target, err := h.members.FindByID(c.Param("memberId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Member not found.")
		} else {
			apierrors.InternalError(c, "Failed to fetch member.")
		}
		return
	}
	if target.WorkspaceID != actor.WorkspaceID {
		apierrors.NotFound(c, "Member not found.")
		return
	}

	if req.Role == models.RoleMember {
		total, err := h.members.CountByWorkspace(actor.WorkspaceID)
		if err != nil {
			apierrors.InternalError(c, "Failed to count members.")
			return
		}
		if total == 1 {
			apierrors.BadRequest(c, "Cannot downgrade the only member.")
			return
		}
	}

	if target.UserID == workspace.UserID {
		apierrors.BadRequest(c, "Cannot change the owner role.")
		return
	}

	if err := h.members.UpdateRole(target.ID, req.Role); err != nil {
		apierrors.InternalError(c, "Failed to update role.")
		return
	}

	updated, err := h.members.FindByIDWithUser(target.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch member.")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*updated))
}

// RemoveMember removes a member from the workspace. Admins can remove
// regular members; only the owner can remove another admin. The owner
// and the last remaining member can never be removed.
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	actor, ok := middleware.GetMember(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var workspace models.Workspace
	if err := database.GetDB().First(&workspace, "id = ?", actor.WorkspaceID).Error; err != nil {
		apierrors.NotFound(c, "Workspace not found.")
		return
	}

	target, err := h.members.FindByID(c.Param("memberId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Member not found.")
		} else {
			apierrors.InternalError(c, "Failed to fetch member.")
		}
		return
	}
	if target.WorkspaceID != actor.WorkspaceID {
		apierrors.NotFound(c, "Member not found.")
		return
	}

	total, err := h.members.CountByWorkspace(actor.WorkspaceID)
	if err != nil {
		apierrors.InternalError(c, "Failed to count members.")
		return
	}
	if total == 1 {
		apierrors.BadRequest(c, "Cannot delete the only member.")
		return
	}

	if target.UserID == workspace.UserID {
		apierrors.BadRequest(c, "Cannot remove the workspace owner.")
		return
	}

	isOwner := workspace.UserID == userID
	isSelf := target.ID == actor.ID
	if !isOwner && !isSelf {
		if actor.Role != models.RoleAdmin || target.Role != models.RoleMember {
			apierrors.Unauthorized(c, "")
			return
		}
	}

	if err := h.members.Delete(target.ID); err != nil {
		apierrors.InternalError(c, "Failed to remove member.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
