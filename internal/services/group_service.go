package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calentasker/calentasker-api/internal/authz"
	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrInvalidGroupName    = errors.New("group name cannot be empty")
	ErrParentGroupNotFound = errors.New("parent group not found")
	ErrGroupCycle          = errors.New("a group cannot become a descendant of itself")
	ErrNotGroupMember      = errors.New("you are not a member of this group")
	ErrInsufficientRole    = errors.New("your role does not permit this action")
	ErrDuplicateMembership = errors.New("user is already a member of this group")
	ErrMemberRefRequired   = errors.New("a user id, email or username is required")
	ErrInvalidRole         = errors.New("invalid group role")
	ErrMemberNotFound      = errors.New("group member not found")
	ErrTargetNotMember     = errors.New("leadership can only be transferred to an existing member")
	ErrLeaderMustTransfer  = errors.New("the leader must transfer leadership before leaving the group")
)

// GroupService provides business logic for the group hierarchy and its
// memberships.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// CreateGroupInput represents parameters to create a new group.
type CreateGroupInput struct {
	Name          string
	Description   string
	ParentGroupID *uint64
	ImageURL      string
	CreatorID     uint64
}

// CreateGroup creates a group and makes the creator its first leader. The
// group row and the leader membership commit together or not at all.
func (s *GroupService) CreateGroup(input CreateGroupInput) (*models.Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidGroupName
	}

	if input.ParentGroupID != nil {
		if _, err := s.groupRepo.FindByID(*input.ParentGroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentGroupNotFound
			}
			return nil, fmt.Errorf("failed to find parent group: %w", err)
		}
	}

	creatorID := input.CreatorID
	group := &models.Group{
		Name:          input.Name,
		Description:   input.Description,
		ParentGroupID: input.ParentGroupID,
		ImageURL:      input.ImageURL,
		CreatedByID:   &creatorID,
		Active:        true,
	}

	if err := s.groupRepo.CreateWithLeader(group, input.CreatorID); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// ListGroupsInput holds listing filters.
type ListGroupsInput struct {
	ParentGroupID *uint64
	RootOnly      bool
}

// ListGroups returns active groups ordered by name.
func (s *GroupService) ListGroups(input ListGroupsInput) ([]models.Group, error) {
	groups, err := s.groupRepo.List(repository.GroupFilter{
		ParentGroupID: input.ParentGroupID,
		RootOnly:      input.RootOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// GetGroupWithMembers returns a group and all of its members. Soft-deleted
// groups stay reachable by id.
func (s *GroupService) GetGroupWithMembers(groupID uint64) (*models.Group, []models.GroupMember, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, fmt.Errorf("failed to find group: %w", err)
	}

	members, err := s.groupRepo.ListMembers(groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list group members: %w", err)
	}

	return group, members, nil
}

// UpdateGroupInput represents a partial group update.
type UpdateGroupInput struct {
	Name          *string
	Description   *string
	ImageURL      *string
	ParentGroupID *uint64
	ClearParent   bool
}

// UpdateGroup applies a partial update. Only the leader may edit a group.
// Re-parenting is rejected when it would introduce a cycle.
func (s *GroupService) UpdateGroup(groupID, actorID uint64, input UpdateGroupInput) (*models.Group, error) {
	if err := s.requireRole(groupID, actorID, authz.ActionEditGroup); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidGroupName
		}
		group.Name = *input.Name
	}
	if input.Description != nil {
		group.Description = *input.Description
	}
	if input.ImageURL != nil {
		group.ImageURL = *input.ImageURL
	}
	if input.ClearParent {
		group.ParentGroupID = nil
	} else if input.ParentGroupID != nil {
		if err := s.checkNoCycle(groupID, *input.ParentGroupID); err != nil {
			return nil, err
		}
		group.ParentGroupID = input.ParentGroupID
	}

	if err := s.groupRepo.Update(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// SoftDeleteGroup marks a group inactive. One-way: there is no reactivation.
// Tasks of the group keep their own active flag and disappear from listings
// only through the group join filter.
func (s *GroupService) SoftDeleteGroup(groupID, actorID uint64) error {
	if err := s.requireRole(groupID, actorID, authz.ActionDeleteGroup); err != nil {
		return err
	}

	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to find group: %w", err)
	}

	if err := s.groupRepo.SoftDelete(groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return nil
}

// MemberRef identifies a user to add: by id, email or username. When several
// are supplied the id wins, then the email, then the username.
type MemberRef struct {
	UserID   *uint64
	Email    string
	Username string
}

// AddMember resolves the referenced user and adds them to the group with the
// given role (reader when unset). Only the leader manages membership.
func (s *GroupService) AddMember(groupID, actorID uint64, ref MemberRef, role models.GroupRole) (*models.GroupMember, error) {
	if err := s.requireRole(groupID, actorID, authz.ActionManageMembers); err != nil {
		return nil, err
	}

	if role == "" {
		role = models.RoleReader
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	user, err := s.resolveMemberRef(ref)
	if err != nil {
		return nil, err
	}

	if _, err := s.groupRepo.FindMember(groupID, user.ID); err == nil {
		return nil, ErrDuplicateMembership
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.GroupMember{
		GroupID: groupID,
		UserID:  user.ID,
		Role:    role,
	}

	if err := s.groupRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	member.User = *user
	return member, nil
}

// RemoveMember removes a member from the group. The leader cannot be removed;
// leadership has to be transferred first so the group never ends up leaderless.
func (s *GroupService) RemoveMember(groupID, actorID, targetUserID uint64) error {
	if err := s.requireRole(groupID, actorID, authz.ActionManageMembers); err != nil {
		return err
	}

	target, err := s.groupRepo.FindMember(groupID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find group member: %w", err)
	}

	if target.Role == models.RoleLeader {
		return ErrLeaderMustTransfer
	}

	if err := s.groupRepo.RemoveMember(groupID, targetUserID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// TransferLeadership demotes the requesting leader to reader and promotes an
// existing member to leader, atomically.
func (s *GroupService) TransferLeadership(groupID, actorID, targetUserID uint64) error {
	if err := s.requireRole(groupID, actorID, authz.ActionTransferLeadership); err != nil {
		return err
	}

	if _, err := s.groupRepo.FindMember(groupID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetNotMember
		}
		return fmt.Errorf("failed to find target member: %w", err)
	}

	if err := s.groupRepo.TransferLeadership(groupID, actorID, targetUserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoLeaderRow):
			return ErrInsufficientRole
		case errors.Is(err, repository.ErrNoTargetRow):
			return ErrTargetNotMember
		default:
			return fmt.Errorf("failed to transfer leadership: %w", err)
		}
	}

	return nil
}

// ListMembershipsForUser returns the groups a user belongs to, with roles.
func (s *GroupService) ListMembershipsForUser(userID uint64) ([]models.GroupMember, error) {
	memberships, err := s.groupRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// requireRole verifies the actor is a member whose role grants the action.
// "Not a member" and "insufficient role" are reported distinctly.
func (s *GroupService) requireRole(groupID, userID uint64, action authz.Action) error {
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

// resolveMemberRef resolves a user by id, then email, then username.
func (s *GroupService) resolveMemberRef(ref MemberRef) (*models.User, error) {
	var (
		user *models.User
		err  error
	)

	switch {
	case ref.UserID != nil:
		user, err = s.userRepo.FindByID(*ref.UserID)
	case strings.TrimSpace(ref.Email) != "":
		user, err = s.userRepo.FindByEmail(strings.TrimSpace(ref.Email))
	case strings.TrimSpace(ref.Username) != "":
		user, err = s.userRepo.FindByUsername(strings.TrimSpace(ref.Username))
	default:
		return nil, ErrMemberRefRequired
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return user, nil
}

// checkNoCycle rejects a proposed parent that is the group itself or any of
// its descendants, walking the parent chain upward from the proposed parent.
func (s *GroupService) checkNoCycle(groupID, proposedParentID uint64) error {
	current := proposedParentID
	for {
		if current == groupID {
			return ErrGroupCycle
		}

		parent, err := s.groupRepo.FindByID(current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParentGroupNotFound
			}
			return fmt.Errorf("failed to walk group hierarchy: %w", err)
		}

		if parent.ParentGroupID == nil {
			return nil
		}
		current = *parent.ParentGroupID
	}
}
