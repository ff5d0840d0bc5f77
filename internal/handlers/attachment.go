package handlers

import (
	"errors"
	"net/http"

	"github.com/calentasker/calentasker-api/internal/dto"
	apierrors "github.com/calentasker/calentasker-api/internal/errors"
	"github.com/calentasker/calentasker-api/internal/middleware"
	"github.com/calentasker/calentasker-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler coordinates task attachment HTTP handlers.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// UploadAttachment stores a file and records it against a task.
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
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

	attachment, err := h.attachmentService.Upload(
		taskID,
		actorID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		f,
	)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAttachmentDTO(*attachment))
}

// ListAttachments lists the attachments of a task.
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	attachments, err := h.attachmentService.List(taskID, actorID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	attachmentDTOs := make([]dto.AttachmentDTO, len(attachments))
	for i, attachment := range attachments {
		attachmentDTOs[i] = dto.ToAttachmentDTO(attachment)
	}

	c.JSON(http.StatusOK, gin.H{
		"attachments": attachmentDTOs,
	})
}

// DeleteAttachment removes an attachment record.
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	attachmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.attachmentService.Delete(attachmentID, actorID); err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Attachment deleted",
	})
}

func respondAttachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAttachmentNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotAttachmentOwner),
		errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrNotTaskCreator):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrFileNameRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
