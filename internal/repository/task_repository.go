package repository

import (
	"strings"
	"time"

	"github.com/calentasker/calentasker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading. Soft-deleted tasks
// stay fetchable here; only listings filter them out.
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// groupsTable returns the groups table identifier quoted for the active
// dialect. groups is a reserved word in MySQL 8, so it cannot appear bare.
func (r *GormTaskRepository) groupsTable() string {
	var sb strings.Builder
	r.db.Dialector.QuoteTo(&sb, "groups")
	return sb.String()
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	groups := r.groupsTable()
	query := r.db.Model(&models.Task{}).
		Joins("LEFT JOIN " + groups + " ON " + groups + ".id = tasks.group_id")

	if !filter.IncludeInactive {
		// A task of a soft-deleted group disappears from listings even
		// though the task itself is still active; personal tasks have no
		// group and are exempt.
		query = query.Where("tasks.active = ?", true).
			Where("tasks.group_id IS NULL OR "+groups+".active = ?", true)
	}

	if filter.GroupID != nil {
		query = query.Where("tasks.group_id = ?", *filter.GroupID)
	}
	if filter.PersonalOnly {
		query = query.Where("tasks.group_id IS NULL")
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.CreatedByID != nil {
		query = query.Where("tasks.created_by_id = ?", *filter.CreatedByID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("CreatedBy").Preload("AssignedTo").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SoftDelete marks a task inactive. Comments and attachments are left as
// they are; they follow their own flags.
func (r *GormTaskRepository) SoftDelete(id uint64) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Update("active", false).Error
}

// AssignUsers assigns multiple users to a task
func (r *GormTaskRepository) AssignUsers(taskID uint64, userIDs []uint64) error {
	now := time.Now()
	assignments := make([]models.TaskAssignment, len(userIDs))

	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID:     taskID,
			UserID:     userID,
			AssignedAt: now,
		}
	}

	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&assignments).Error
}

// UnassignUsers removes user assignments from a task
func (r *GormTaskRepository) UnassignUsers(taskID uint64, userIDs []uint64) error {
	return r.db.Where("task_id = ? AND user_id IN ?", taskID, userIDs).
		Delete(&models.TaskAssignment{}).Error
}

// FindOverdue returns active tasks due strictly before the given day whose
// status still allows a transition to missed
func (r *GormTaskRepository) FindOverdue(before time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("AssignedTo").
		Where("active = ?", true).
		Where("due_date < ?", before).
		Where("status NOT IN ?", []models.TaskStatus{
			models.TaskStatusDone,
			models.TaskStatusArchived,
			models.TaskStatusMissed,
		}).
		Find(&tasks).Error
	return tasks, err
}

// FindDueBetween returns active tasks with a due date in [from, to) and a
// status of todo, in_progress or missed
func (r *GormTaskRepository) FindDueBetween(from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("AssignedTo").
		Where("active = ?", true).
		Where("due_date >= ? AND due_date < ?", from, to).
		Where("status IN ?", []models.TaskStatus{
			models.TaskStatusTodo,
			models.TaskStatusInProgress,
			models.TaskStatusMissed,
		}).
		Find(&tasks).Error
	return tasks, err
}

// MarkMissed transitions a task to missed. The exclusion predicate is
// re-applied in the WHERE clause so a task completed between selection and
// write is never overwritten.
func (r *GormTaskRepository) MarkMissed(id uint64) (bool, error) {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND active = ?", id, true).
		Where("status NOT IN ?", []models.TaskStatus{
			models.TaskStatusDone,
			models.TaskStatusArchived,
			models.TaskStatusMissed,
		}).
		Update("status", models.TaskStatusMissed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
