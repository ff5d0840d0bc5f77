package dto

import (
	"time"

	"github.com/calentasker/calentasker-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Priority     models.TaskPriority `json:"priority"`
	Status       models.TaskStatus   `json:"status"`
	GroupID      *uint64             `json:"group_id"`
	CreatedByID  uint64              `json:"created_by_id"`
	AssignedToID *uint64             `json:"assigned_to_id"`
	StartDate    *time.Time          `json:"start_date"`
	DueDate      *time.Time          `json:"due_date"`
	CompletedAt  *time.Time          `json:"completed_at"`
	Active       bool                `json:"active"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	CreatedBy    *UserDTO            `json:"created_by,omitempty"`
	AssignedTo   *UserDTO            `json:"assigned_to,omitempty"`
	Group        *GroupDTO           `json:"group,omitempty"`
	Assignees    []UserDTO           `json:"assignees,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	TaskID    uint64    `json:"task_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      *UserDTO  `json:"user,omitempty"`
}

// AttachmentDTO represents an attachment in API responses
type AttachmentDTO struct {
	ID           uint64    `json:"id"`
	TaskID       uint64    `json:"task_id"`
	FileName     string    `json:"file_name"`
	FilePath     string    `json:"file_path"`
	ContentType  string    `json:"content_type,omitempty"`
	UploadedByID uint64    `json:"uploaded_by_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Priority:     task.Priority,
		Status:       task.Status,
		GroupID:      task.GroupID,
		CreatedByID:  task.CreatedByID,
		AssignedToID: task.AssignedToID,
		StartDate:    task.StartDate,
		DueDate:      task.DueDate,
		CompletedAt:  task.CompletedAt,
		Active:       task.Active,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	if task.CreatedBy.ID != 0 {
		creator := ToUserDTO(task.CreatedBy)
		dto.CreatedBy = &creator
	}
	if task.AssignedTo != nil && task.AssignedTo.ID != 0 {
		assignee := ToUserDTO(*task.AssignedTo)
		dto.AssignedTo = &assignee
	}
	if task.Group != nil && task.Group.ID != 0 {
		group := ToGroupDTO(*task.Group)
		dto.Group = &group
	}
	if len(task.Assignments) > 0 {
		dto.Assignees = make([]UserDTO, len(task.Assignments))
		for i, assignment := range task.Assignments {
			dto.Assignees[i] = ToUserDTO(assignment.User)
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}

	if comment.User.ID != 0 {
		user := ToUserDTO(comment.User)
		dto.User = &user
	}

	return dto
}

// ToAttachmentDTO converts an Attachment model to AttachmentDTO
func ToAttachmentDTO(attachment models.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:           attachment.ID,
		TaskID:       attachment.TaskID,
		FileName:     attachment.FileName,
		FilePath:     attachment.FilePath,
		ContentType:  attachment.ContentType,
		UploadedByID: attachment.UploadedByID,
		UploadedAt:   attachment.UploadedAt,
	}
}
