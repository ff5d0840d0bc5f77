package repository

import (
	"time"

	"github.com/calentasker/calentasker-api/internal/models"
)

// GroupFilter holds filtering options for listing groups
type GroupFilter struct {
	ParentGroupID *uint64
	RootOnly      bool
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	GroupID      *uint64
	Status       *models.TaskStatus
	CreatedByID  *uint64
	AssignedToID *uint64
	PersonalOnly bool
	// IncludeInactive disables the default soft-delete filtering. Used by
	// admin-style listings only.
	IncludeInactive bool
	SortByDueDate   bool
	Page            int
	PageSize        int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email, case-insensitively
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username, case-insensitively
	FindByUsername(username string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error
}

// GroupRepository defines the interface for group and membership data access
type GroupRepository interface {
	// CreateWithLeader creates a group and its first leader membership
	// within a single transaction. A group must never exist without a leader.
	CreateWithLeader(group *models.Group, leaderID uint64) error

	// FindByID finds a group by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Group, error)

	// List retrieves active groups ordered by name
	List(filter GroupFilter) ([]models.Group, error)

	// Update updates a group
	Update(group *models.Group) error

	// SoftDelete marks a group inactive; the row stays fetchable by id
	SoftDelete(id uint64) error

	// AddMember adds a member to a group
	AddMember(member *models.GroupMember) error

	// RemoveMember removes a member from a group
	RemoveMember(groupID, userID uint64) error

	// FindMember finds a specific group member
	FindMember(groupID, userID uint64) (*models.GroupMember, error)

	// ListMembers lists all members of a group
	ListMembers(groupID uint64) ([]models.GroupMember, error)

	// ListMembershipsByUserID lists all groups a user is a member of
	ListMembershipsByUserID(userID uint64) ([]models.GroupMember, error)

	// CountMembersIn counts how many of the given user IDs are members of the group
	CountMembersIn(groupID uint64, userIDs []uint64) (int64, error)

	// TransferLeadership demotes the current leader to reader and promotes
	// the target to leader within a single transaction; no intermediate
	// zero- or two-leader state is ever durably visible.
	TransferLeadership(groupID, fromUserID, toUserID uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading; soft-deleted
	// tasks remain fetchable here
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination. Soft-deleted tasks
	// and tasks of soft-deleted groups are excluded; personal tasks are
	// exempt from the group filter.
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// SoftDelete marks a task inactive without touching its children
	SoftDelete(id uint64) error

	// AssignUsers assigns multiple users to a task
	AssignUsers(taskID uint64, userIDs []uint64) error

	// UnassignUsers removes user assignments from a task
	UnassignUsers(taskID uint64, userIDs []uint64) error

	// FindOverdue returns active tasks due strictly before the given day
	// whose status still allows a transition to missed
	FindOverdue(before time.Time) ([]models.Task, error)

	// FindDueBetween returns active tasks with a due date in [from, to)
	// and a status of todo, in_progress or missed
	FindDueBetween(from, to time.Time) ([]models.Task, error)

	// MarkMissed transitions a task to missed, re-applying the exclusion
	// predicate at write time. Returns false when the task was completed,
	// archived or already missed in the meantime.
	MarkMissed(id uint64) (bool, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID
	FindByID(id uint64) (*models.Comment, error)

	// ListByTask lists active comments of a task, oldest first
	ListByTask(taskID uint64) ([]models.Comment, error)

	// Update updates a comment
	Update(comment *models.Comment) error

	// SoftDelete marks a comment inactive
	SoftDelete(id uint64) error
}

// AttachmentRepository defines the interface for attachment data access
type AttachmentRepository interface {
	// Create creates a new attachment record
	Create(attachment *models.Attachment) error

	// FindByID finds an attachment by ID
	FindByID(id uint64) (*models.Attachment, error)

	// ListByTask lists attachments of a task
	ListByTask(taskID uint64) ([]models.Attachment, error)

	// Delete removes an attachment record
	Delete(id uint64) error
}
