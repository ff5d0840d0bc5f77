package dto

import (
	"time"

	"github.com/calentasker/calentasker-api/internal/models"
)

// GroupDTO represents a group in API responses
type GroupDTO struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ParentGroupID *uint64   `json:"parent_group_id"`
	ImageURL      string    `json:"image_url,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// GroupMemberDTO represents a member in a group
type GroupMemberDTO struct {
	User     UserDTO          `json:"user"`
	Role     models.GroupRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

// GroupWithRoleDTO represents a group with the requesting user's role
type GroupWithRoleDTO struct {
	GroupDTO
	Role models.GroupRole `json:"role"`
}

// GroupDetailDTO represents detailed group information
type GroupDetailDTO struct {
	GroupDTO
	Members []GroupMemberDTO `json:"members"`
}

// ToGroupDTO converts a Group model to GroupDTO
func ToGroupDTO(group models.Group) GroupDTO {
	return GroupDTO{
		ID:            group.ID,
		Name:          group.Name,
		Description:   group.Description,
		ParentGroupID: group.ParentGroupID,
		ImageURL:      group.ImageURL,
		Active:        group.Active,
		CreatedAt:     group.CreatedAt,
	}
}

// ToGroupMemberDTO converts a member to DTO
func ToGroupMemberDTO(member models.GroupMember) GroupMemberDTO {
	return GroupMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToGroupWithRoleDTO converts a membership to a group DTO carrying the role
func ToGroupWithRoleDTO(member models.GroupMember) GroupWithRoleDTO {
	return GroupWithRoleDTO{
		GroupDTO: ToGroupDTO(member.Group),
		Role:     member.Role,
	}
}

// ToGroupDetailDTO converts a group with members to a detailed DTO
func ToGroupDetailDTO(group models.Group, members []models.GroupMember) GroupDetailDTO {
	memberDTOs := make([]GroupMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToGroupMemberDTO(member)
	}

	return GroupDetailDTO{
		GroupDTO: ToGroupDTO(group),
		Members:  memberDTOs,
	}
}
