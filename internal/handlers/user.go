package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/calentasker/calentasker-api/internal/dto"
	apierrors "github.com/calentasker/calentasker-api/internal/errors"
	"github.com/calentasker/calentasker-api/internal/middleware"
	"github.com/calentasker/calentasker-api/internal/services"
	"github.com/calentasker/calentasker-api/internal/storage"
	"github.com/gin-gonic/gin"
)

// UserHandler coordinates user profile HTTP handlers.
type UserHandler struct {
	userService *services.UserService
	fileStore   storage.FileStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, fileStore storage.FileStore) *UserHandler {
	return &UserHandler{
		userService: userService,
		fileStore:   fileStore,
	}
}

// GetUser returns a user's profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update to the actor's own profile.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateUserRequest struct {
		Username  *string `json:"username"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(userID, actorID, services.UpdateProfileInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UploadProfilePicture stores a profile picture for the actor's own profile.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "A file upload is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}
	defer f.Close()

	hint := filepath.Join("profile_pictures", filepath.Base(fileHeader.Filename))
	path, err := h.fileStore.Store(f, hint)
	if err != nil {
		apierrors.InternalError(c, "Failed to store file")
		return
	}

	user, err := h.userService.SetProfilePicture(userID, actorID, path)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// parseIDParam parses a numeric path parameter, responding 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
