package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/calentasker/calentasker-api/internal/dto"
	apierrors "github.com/calentasker/calentasker-api/internal/errors"
	"github.com/calentasker/calentasker-api/internal/middleware"
	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/services"
	"github.com/gin-gonic/gin"
)

// GroupHandler coordinates group hierarchy HTTP handlers.
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// CreateGroup creates a new group with the actor as its first leader.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateGroupRequest struct {
		Name          string  `json:"name" binding:"required"`
		Description   string  `json:"description"`
		ParentGroupID *uint64 `json:"parent_group_id"`
		ImageURL      string  `json:"image_url"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.CreateGroup(services.CreateGroupInput{
		Name:          req.Name,
		Description:   req.Description,
		ParentGroupID: req.ParentGroupID,
		ImageURL:      req.ImageURL,
		CreatorID:     actorID,
	})
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupDTO(*group))
}

// ListGroups returns active groups, optionally restricted to the children of
// a parent or to root groups only.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	var input services.ListGroupsInput

	if parent := c.Query("parent_group"); parent != "" {
		parentID, err := strconv.ParseUint(parent, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid parent_group parameter")
			return
		}
		input.ParentGroupID = &parentID
	}
	input.RootOnly = c.Query("root_only") == "true"

	groups, err := h.groupService.ListGroups(input)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	groupDTOs := make([]dto.GroupDTO, len(groups))
	for i, group := range groups {
		groupDTOs[i] = dto.ToGroupDTO(group)
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groupDTOs,
	})
}

// ListMyGroups returns the groups the actor belongs to, with roles.
func (h *GroupHandler) ListMyGroups(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.groupService.ListMembershipsForUser(actorID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	groupsWithRole := make([]dto.GroupWithRoleDTO, len(memberships))
	for i, m := range memberships {
		groupsWithRole[i] = dto.ToGroupWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groupsWithRole,
	})
}

// GetGroup returns group details including members.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, members, err := h.groupService.GetGroupWithMembers(groupID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDetailDTO(*group, members))
}

// UpdateGroup applies a partial update. Leader only.
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateGroupRequest struct {
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		ImageURL      *string `json:"image_url"`
		ParentGroupID *uint64 `json:"parent_group_id"`
		ClearParent   bool    `json:"clear_parent"`
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.UpdateGroup(groupID, actorID, services.UpdateGroupInput{
		Name:          req.Name,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		ParentGroupID: req.ParentGroupID,
		ClearParent:   req.ClearParent,
	})
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group))
}

// DeleteGroup soft-deletes a group. Leader only.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.groupService.SoftDeleteGroup(groupID, actorID); err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group deleted",
	})
}

// AddMember adds a user to the group by id, email or username.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type AddMemberRequest struct {
		UserID   *uint64          `json:"user_id"`
		Email    string           `json:"email"`
		Username string           `json:"username"`
		Role     models.GroupRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.groupService.AddMember(groupID, actorID, services.MemberRef{
		UserID:   req.UserID,
		Email:    req.Email,
		Username: req.Username,
	}, req.Role)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupMemberDTO(*member))
}

// RemoveMember removes a user from the group. Leader only.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.groupService.RemoveMember(groupID, actorID, targetID); err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed",
	})
}

// TransferLeadership hands the leader role to another member.
func (h *GroupHandler) TransferLeadership(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type TransferRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.groupService.TransferLeadership(groupID, actorID, req.UserID); err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Leadership transferred",
	})
}

func respondGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrParentGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrInsufficientRole):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrDuplicateMembership):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidGroupName),
		errors.Is(err, services.ErrMemberRefRequired),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrGroupCycle),
		errors.Is(err, services.ErrTargetNotMember),
		errors.Is(err, services.ErrLeaderMustTransfer):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
