package models

import (
	"time"
)

type Group struct {
	ID            uint64    `gorm:"primarykey" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	CreatedByID   *uint64   `json:"created_by_id"`
	ParentGroupID *uint64   `gorm:"index" json:"parent_group_id"`
	ImageURL      string    `gorm:"type:varchar(255)" json:"image_url"`
	Active        bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	CreatedBy   *User         `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
	ParentGroup *Group        `gorm:"foreignKey:ParentGroupID" json:"parent_group,omitempty"`
	Subgroups   []Group       `gorm:"foreignKey:ParentGroupID" json:"subgroups,omitempty"`
	Members     []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Tasks       []Task        `gorm:"foreignKey:GroupID" json:"tasks,omitempty"`
}
