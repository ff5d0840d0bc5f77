package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/calentasker/calentasker-api/internal/authz"
	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleEmpty        = errors.New("title cannot be empty")
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrMissedReserved    = errors.New("the missed status is assigned by the deadline sweeper")
	ErrNotTaskCreator    = errors.New("only the creator can modify a personal task")
	ErrNoUserIDsProvided = errors.New("at least one user ID is required")
	ErrInvalidAssignee   = errors.New("one or more users are not members of the task's group")
)

// TaskService handles task lifecycle business logic.
type TaskService struct {
	taskRepo  repository.TaskRepository
	groupRepo repository.GroupRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, groupRepo repository.GroupRepository) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		groupRepo: groupRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title        string
	Description  string
	Priority     models.TaskPriority
	Status       models.TaskStatus
	GroupID      *uint64
	AssignedToID *uint64
	StartDate    *time.Time
	DueDate      *time.Time
	CreatorID    uint64
}

// CreateTask creates a task. A group task requires the creator to hold the
// leader or operator role in that group; a personal task (no group) is always
// permitted for an authenticated creator.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Status == models.TaskStatusMissed {
		return nil, ErrMissedReserved
	}

	if input.Priority == "" {
		input.Priority = models.PriorityLow
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	if input.GroupID != nil {
		if err := s.requireTaskRole(*input.GroupID, input.CreatorID, authz.ActionCreateTask); err != nil {
			return nil, err
		}

		if input.AssignedToID != nil {
			if _, err := s.groupRepo.FindMember(*input.GroupID, *input.AssignedToID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrInvalidAssignee
				}
				return nil, fmt.Errorf("failed to verify assignee: %w", err)
			}
		}
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Priority:     input.Priority,
		Status:       input.Status,
		GroupID:      input.GroupID,
		AssignedToID: input.AssignedToID,
		StartDate:    input.StartDate,
		DueDate:      input.DueDate,
		CreatedByID:  input.CreatorID,
		Active:       true,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "CreatedBy", "Group", "AssignedTo")
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	ActorID      uint64
	GroupID      *uint64
	Status       *models.TaskStatus
	CreatedByID  *uint64
	PersonalOnly bool
	SortByDue    bool
	Page         int
	PageSize     int
}

// ListTasks returns tasks visible to the actor. Soft-deleted tasks and tasks
// whose group is soft-deleted are excluded; personal tasks are exempt from the
// group filter. Listing a specific group requires membership in it.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	if input.GroupID != nil {
		if _, err := s.groupRepo.FindMember(*input.GroupID, input.ActorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrNotGroupMember
			}
			return nil, 0, fmt.Errorf("failed to verify membership: %w", err)
		}
	}

	filter := repository.TaskFilter{
		GroupID:       input.GroupID,
		Status:        input.Status,
		CreatedByID:   input.CreatedByID,
		PersonalOnly:  input.PersonalOnly,
		SortByDueDate: input.SortByDue,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	if input.PersonalOnly {
		// Personal tasks are visible to their creator only.
		filter.CreatedByID = &input.ActorID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data. Group tasks are visible to group
// members; personal tasks only to their creator.
func (s *TaskService) GetTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "CreatedBy", "Group", "AssignedTo", "Assignments", "Assignments.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.requireTaskView(task, actorID); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTaskInput represents a partial task update.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.TaskPriority
	Status        *models.TaskStatus
	StartDate     *time.Time
	DueDate       *time.Time
	ClearDueDate  bool
	AssignedToID  *uint64
	ClearAssignee bool
}

// UpdateTask applies a partial update. Group-task edits require the leader or
// operator role; personal-task edits are creator-only. Setting the missed
// status directly is rejected; only the sweeper assigns it.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.requireTaskEdit(task, actorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil && *input.Status != task.Status {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		if *input.Status == models.TaskStatusMissed {
			return nil, ErrMissedReserved
		}

		if *input.Status == models.TaskStatusDone {
			now := time.Now()
			task.CompletedAt = &now
		} else if task.Status == models.TaskStatusDone {
			task.CompletedAt = nil
		}
		task.Status = *input.Status
	}
	if input.StartDate != nil {
		task.StartDate = input.StartDate
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.AssignedToID = nil
	} else if input.AssignedToID != nil {
		if task.GroupID != nil {
			if _, err := s.groupRepo.FindMember(*task.GroupID, *input.AssignedToID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrInvalidAssignee
				}
				return nil, fmt.Errorf("failed to verify assignee: %w", err)
			}
		}
		task.AssignedToID = input.AssignedToID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "CreatedBy", "Group", "AssignedTo")
}

// SoftDeleteTask marks a task inactive. The row stays fetchable by id; child
// comments and attachments keep their own flags.
func (s *TaskService) SoftDeleteTask(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.requireTaskEdit(task, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.SoftDelete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignUsers adds assignments for the given users. For group tasks every
// assignee must be a member of the task's group.
func (s *TaskService) AssignUsers(taskID, actorID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return ErrNoUserIDsProvided
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.requireTaskEdit(task, actorID); err != nil {
		return err
	}

	userIDs = uniqueUint64(userIDs)

	if task.GroupID != nil {
		count, err := s.groupRepo.CountMembersIn(*task.GroupID, userIDs)
		if err != nil {
			return fmt.Errorf("failed to verify assignees: %w", err)
		}
		if int(count) != len(userIDs) {
			return ErrInvalidAssignee
		}
	} else {
		for _, id := range userIDs {
			if id != task.CreatedByID {
				return ErrInvalidAssignee
			}
		}
	}

	if err := s.taskRepo.AssignUsers(taskID, userIDs); err != nil {
		return fmt.Errorf("failed to assign users: %w", err)
	}

	return nil
}

// UnassignUsers removes assignments for the given users.
func (s *TaskService) UnassignUsers(taskID, actorID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return ErrNoUserIDsProvided
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.requireTaskEdit(task, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.UnassignUsers(taskID, uniqueUint64(userIDs)); err != nil {
		return fmt.Errorf("failed to unassign users: %w", err)
	}

	return nil
}

// requireTaskRole verifies a group role grants a task action, reporting
// non-membership and insufficient role distinctly.
func (s *TaskService) requireTaskRole(groupID, userID uint64, action authz.Action) error {
	member, err := s.groupRepo.FindMember(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	if !authz.Can(member.Role, action) {
		return ErrInsufficientRole
	}

	return nil
}

// requireTaskEdit applies the edit/delete rule: group tasks need the leader
// or operator role, personal tasks the creator.
func (s *TaskService) requireTaskEdit(task *models.Task, actorID uint64) error {
	if task.IsPersonal() {
		if task.CreatedByID != actorID {
			return ErrNotTaskCreator
		}
		return nil
	}
	return s.requireTaskRole(*task.GroupID, actorID, authz.ActionEditTask)
}

// requireTaskView applies the visibility rule: any group member may view a
// group task, only the creator a personal one.
func (s *TaskService) requireTaskView(task *models.Task, actorID uint64) error {
	if task.IsPersonal() {
		if task.CreatedByID != actorID {
			return ErrNotTaskCreator
		}
		return nil
	}

	if _, err := s.groupRepo.FindMember(*task.GroupID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	return nil
}

// uniqueUint64 removes duplicate values from a slice of uint64.
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
