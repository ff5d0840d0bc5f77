package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/calentasker/calentasker-api/internal/dto"
	apierrors "github.com/calentasker/calentasker-api/internal/errors"
	"github.com/calentasker/calentasker-api/internal/middleware"
	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/services"
	"github.com/calentasker/calentasker-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// TaskHandler coordinates task lifecycle HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a group or personal task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title        string              `json:"title" binding:"required"`
		Description  string              `json:"description"`
		Priority     models.TaskPriority `json:"priority"`
		Status       models.TaskStatus   `json:"status"`
		GroupID      *uint64             `json:"group_id"`
		AssignedToID *uint64             `json:"assigned_to_id"`
		StartDate    *time.Time          `json:"start_date"`
		DueDate      *time.Time          `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		GroupID:      req.GroupID,
		AssignedToID: req.AssignedToID,
		StartDate:    req.StartDate,
		DueDate:      req.DueDate,
		CreatorID:    actorID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks lists tasks visible to the actor.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{
		ActorID:      actorID,
		PersonalOnly: c.Query("personal") == "true",
		SortByDue:    c.Query("sort") == "due_date",
	}

	if group := c.Query("group"); group != "" {
		groupID, err := strconv.ParseUint(group, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid group parameter")
			return
		}
		input.GroupID = &groupID
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		if !s.IsValid() {
			apierrors.BadRequest(c, "Invalid status parameter")
			return
		}
		input.Status = &s
	}
	if creator := c.Query("created_by"); creator != "" {
		creatorID, err := strconv.ParseUint(creator, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid created_by parameter")
			return
		}
		input.CreatedByID = &creatorID
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a task with related data.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.taskService.GetTask(taskID, actorID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateTaskRequest struct {
		Title         *string              `json:"title"`
		Description   *string              `json:"description"`
		Priority      *models.TaskPriority `json:"priority"`
		Status        *models.TaskStatus   `json:"status"`
		StartDate     *time.Time           `json:"start_date"`
		DueDate       *time.Time           `json:"due_date"`
		ClearDueDate  bool                 `json:"clear_due_date"`
		AssignedToID  *uint64              `json:"assigned_to_id"`
		ClearAssignee bool                 `json:"clear_assignee"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(taskID, actorID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        req.Status,
		StartDate:     req.StartDate,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		AssignedToID:  req.AssignedToID,
		ClearAssignee: req.ClearAssignee,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft-deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.taskService.SoftDeleteTask(taskID, actorID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted",
	})
}

// AssignTask assigns users to a task.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type AssignRequest struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.taskService.AssignUsers(taskID, actorID, req.UserIDs); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users assigned",
	})
}

// UnassignTask removes user assignments from a task.
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UnassignRequest struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}

	var req UnassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.taskService.UnassignUsers(taskID, actorID, req.UserIDs); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users unassigned",
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrInsufficientRole),
		errors.Is(err, services.ErrNotTaskCreator):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrMissedReserved),
		errors.Is(err, services.ErrNoUserIDsProvided),
		errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
