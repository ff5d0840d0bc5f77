package models

import "time"

type GroupRole string

const (
	RoleReader    GroupRole = "reader"
	RoleOperator  GroupRole = "operator"
	RoleModerator GroupRole = "moderator"
	RoleLeader    GroupRole = "leader"
)

// IsValid reports whether the role is one of the closed set.
func (r GroupRole) IsValid() bool {
	switch r {
	case RoleReader, RoleOperator, RoleModerator, RoleLeader:
		return true
	}
	return false
}

type GroupMember struct {
	GroupID  uint64    `gorm:"primarykey" json:"group_id"`
	UserID   uint64    `gorm:"primarykey" json:"user_id"`
	Role     GroupRole `gorm:"type:varchar(10);not null;default:'reader'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
