package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusArchived   TaskStatus = "archived"
	// TaskStatusMissed is assigned only by the deadline sweeper; user edits
	// may never set it directly.
	TaskStatusMissed TaskStatus = "missed"
)

// IsValid reports whether the status is one of the closed set.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchived, TaskStatusMissed:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// IsValid reports whether the priority is one of the closed set.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	Title        string       `gorm:"type:varchar(150);not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'low'" json:"priority"`
	Status       TaskStatus   `gorm:"type:varchar(15);not null;default:'todo'" json:"status"`
	GroupID      *uint64      `gorm:"index" json:"group_id"`
	CreatedByID  uint64       `gorm:"not null" json:"created_by_id"`
	AssignedToID *uint64      `json:"assigned_to_id"`
	StartDate    *time.Time   `json:"start_date"`
	DueDate      *time.Time   `json:"due_date"`
	CompletedAt  *time.Time   `json:"completed_at"`
	Active       bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Group       *Group           `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	CreatedBy   User             `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedTo  *User            `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Comments    []Comment        `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	Attachments []Attachment     `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
}

// IsPersonal reports whether the task belongs to no group. Personal tasks are
// administered solely by their creator.
func (t *Task) IsPersonal() bool {
	return t.GroupID == nil
}
