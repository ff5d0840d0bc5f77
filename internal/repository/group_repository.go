package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/calentasker/calentasker-api/internal/database"
	"github.com/calentasker/calentasker-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNoLeaderRow is returned when a leadership transfer finds no leader
	// membership for the requesting user.
	ErrNoLeaderRow = errors.New("group repository: requester holds no leader membership")
	// ErrNoTargetRow is returned when a leadership transfer finds no
	// membership for the target user.
	ErrNoTargetRow = errors.New("group repository: target holds no membership")
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

// CreateWithLeader creates a group and the creator's leader membership atomically.
func (r *GormGroupRepository) CreateWithLeader(group *models.Group, leaderID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}

		member := &models.GroupMember{
			GroupID:  group.ID,
			UserID:   leaderID,
			Role:     models.RoleLeader,
			JoinedAt: time.Now(),
		}

		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create leader membership: %w", err)
		}

		return nil
	})
}

// FindByID finds a group by ID with optional preloading
func (r *GormGroupRepository) FindByID(id uint64, preload ...string) (*models.Group, error) {
	var group models.Group
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&group, id).Error; err != nil {
		return nil, err
	}

	return &group, nil
}

// List retrieves active groups ordered by name
func (r *GormGroupRepository) List(filter GroupFilter) ([]models.Group, error) {
	var groups []models.Group

	query := r.db.Scopes(database.ActiveOnly).Order("name")

	if filter.ParentGroupID != nil {
		query = query.Where("parent_group_id = ?", *filter.ParentGroupID)
	} else if filter.RootOnly {
		query = query.Where("parent_group_id IS NULL")
	}

	if err := query.Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// Update updates a group
func (r *GormGroupRepository) Update(group *models.Group) error {
	return r.db.Save(group).Error
}

// SoftDelete marks a group inactive. Tasks of the group are left untouched;
// listings exclude them through the group join filter.
func (r *GormGroupRepository) SoftDelete(id uint64) error {
	return r.db.Model(&models.Group{}).Where("id = ?", id).Update("active", false).Error
}

// AddMember adds a member to a group
func (r *GormGroupRepository) AddMember(member *models.GroupMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a group
func (r *GormGroupRepository) RemoveMember(groupID, userID uint64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

// FindMember finds a specific group member
func (r *GormGroupRepository) FindMember(groupID, userID uint64) (*models.GroupMember, error) {
	var member models.GroupMember
	if err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a group
func (r *GormGroupRepository) ListMembers(groupID uint64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if err := r.db.Preload("User").
		Where("group_id = ?", groupID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUserID lists all groups a user is a member of
func (r *GormGroupRepository) ListMembershipsByUserID(userID uint64) ([]models.GroupMember, error) {
	var memberships []models.GroupMember
	if err := r.db.Preload("Group").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountMembersIn counts how many of the given user IDs are members of the group
func (r *GormGroupRepository) CountMembersIn(groupID uint64, userIDs []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id IN ?", groupID, userIDs).
		Count(&count).Error
	return count, err
}

// TransferLeadership swaps the leader role from one member to another in a
// single transaction. Both updates check their precondition in the WHERE
// clause, so concurrent transfers serialize on the row locks and the loser
// rolls back instead of leaving zero or two leaders.
func (r *GormGroupRepository) TransferLeadership(groupID, fromUserID, toUserID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		demote := tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ? AND role = ?", groupID, fromUserID, models.RoleLeader).
			Update("role", models.RoleReader)
		if demote.Error != nil {
			return fmt.Errorf("demote leader: %w", demote.Error)
		}
		if demote.RowsAffected == 0 {
			return ErrNoLeaderRow
		}

		promote := tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, toUserID).
			Update("role", models.RoleLeader)
		if promote.Error != nil {
			return fmt.Errorf("promote member: %w", promote.Error)
		}
		if promote.RowsAffected == 0 {
			return ErrNoTargetRow
		}

		return nil
	})
}
