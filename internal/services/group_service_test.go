package services

import (
	"testing"

	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type groupTestEnv struct {
	db           *gorm.DB
	groupService *GroupService
	groupRepo    repository.GroupRepository
}

func setupGroupTestEnv(t *testing.T) groupTestEnv {
	t.Helper()

	db := openTestDB(t)

	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)

	return groupTestEnv{
		db:           db,
		groupService: NewGroupService(groupRepo, userRepo),
		groupRepo:    groupRepo,
	}
}

// openTestDB opens an in-memory database with the full schema. Shared by the
// service tests in this package.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Comment{},
		&models.Attachment{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// createTestUser inserts a user directly, bypassing signup.
func createTestUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: "irrelevant",
		Active:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestGroupService_CreateGroup(t *testing.T) {
	env := setupGroupTestEnv(t)
	creator := createTestUser(t, env.db, "creator@example.com", "creator")

	group, err := env.groupService.CreateGroup(CreateGroupInput{
		Name:      "Engineering",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, group.ID)

	var members []models.GroupMember
	require.NoError(t, env.db.Where("group_id = ?", group.ID).Find(&members).Error)
	require.Len(t, members, 1)
	require.Equal(t, creator.ID, members[0].UserID)
	require.Equal(t, models.RoleLeader, members[0].Role)
}

func TestGroupService_CreateGroup_EmptyName(t *testing.T) {
	env := setupGroupTestEnv(t)
	creator := createTestUser(t, env.db, "creator@example.com", "creator")

	_, err := env.groupService.CreateGroup(CreateGroupInput{
		Name:      "   ",
		CreatorID: creator.ID,
	})
	require.ErrorIs(t, err, ErrInvalidGroupName)
}

func TestGroupService_CreateGroup_MissingParent(t *testing.T) {
	env := setupGroupTestEnv(t)
	creator := createTestUser(t, env.db, "creator@example.com", "creator")

	missing := uint64(9999)
	_, err := env.groupService.CreateGroup(CreateGroupInput{
		Name:          "Orphan",
		ParentGroupID: &missing,
		CreatorID:     creator.ID,
	})
	require.ErrorIs(t, err, ErrParentGroupNotFound)
}

func TestGroupService_AddMember(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	joiner := createTestUser(t, env.db, "joiner@example.com", "joiner")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	member, err := env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &joiner.ID}, "")
	require.NoError(t, err)
	require.Equal(t, joiner.ID, member.UserID)
	require.Equal(t, models.RoleReader, member.Role)
}

func TestGroupService_AddMember_ByEmailCaseInsensitive(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	joiner := createTestUser(t, env.db, "joiner@example.com", "joiner")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	member, err := env.groupService.AddMember(group.ID, leader.ID, MemberRef{Email: "JOINER@Example.COM"}, models.RoleOperator)
	require.NoError(t, err)
	require.Equal(t, joiner.ID, member.UserID)
	require.Equal(t, models.RoleOperator, member.Role)
}

func TestGroupService_AddMember_ByUsernameCaseInsensitive(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	joiner := createTestUser(t, env.db, "joiner@example.com", "Joiner")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	member, err := env.groupService.AddMember(group.ID, leader.ID, MemberRef{Username: "joiner"}, "")
	require.NoError(t, err)
	require.Equal(t, joiner.ID, member.UserID)
}

func TestGroupService_AddMember_Duplicate(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	joiner := createTestUser(t, env.db, "joiner@example.com", "joiner")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	_, err = env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &joiner.ID}, "")
	require.NoError(t, err)

	_, err = env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &joiner.ID}, "")
	require.ErrorIs(t, err, ErrDuplicateMembership)

	var count int64
	require.NoError(t, env.db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestGroupService_AddMember_RequiresLeader(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	operator := createTestUser(t, env.db, "operator@example.com", "operator")
	joiner := createTestUser(t, env.db, "joiner@example.com", "joiner")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	_, err = env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &operator.ID}, models.RoleOperator)
	require.NoError(t, err)

	_, err = env.groupService.AddMember(group.ID, operator.ID, MemberRef{UserID: &joiner.ID}, "")
	require.ErrorIs(t, err, ErrInsufficientRole)

	_, err = env.groupService.AddMember(group.ID, outsider.ID, MemberRef{UserID: &joiner.ID}, "")
	require.ErrorIs(t, err, ErrNotGroupMember)
}

func TestGroupService_RemoveMember_LeaderMustTransferFirst(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	err = env.groupService.RemoveMember(group.ID, leader.ID, leader.ID)
	require.ErrorIs(t, err, ErrLeaderMustTransfer)
}

func TestGroupService_TransferLeadership(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	successor := createTestUser(t, env.db, "successor@example.com", "successor")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	_, err = env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &successor.ID}, "")
	require.NoError(t, err)

	require.NoError(t, env.groupService.TransferLeadership(group.ID, leader.ID, successor.ID))

	var leaders []models.GroupMember
	require.NoError(t, env.db.
		Where("group_id = ? AND role = ?", group.ID, models.RoleLeader).
		Find(&leaders).Error)
	require.Len(t, leaders, 1)
	require.Equal(t, successor.ID, leaders[0].UserID)

	former, err := env.groupRepo.FindMember(group.ID, leader.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleReader, former.Role)
}

func TestGroupService_TransferLeadership_TargetNotMember(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	err = env.groupService.TransferLeadership(group.ID, leader.ID, outsider.ID)
	require.ErrorIs(t, err, ErrTargetNotMember)
}

func TestGroupService_SoftDeleteGroup(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	_, err = env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &reader.ID}, "")
	require.NoError(t, err)

	require.ErrorIs(t, env.groupService.SoftDeleteGroup(group.ID, reader.ID), ErrInsufficientRole)
	require.ErrorIs(t, env.groupService.SoftDeleteGroup(group.ID, outsider.ID), ErrNotGroupMember)

	require.NoError(t, env.groupService.SoftDeleteGroup(group.ID, leader.ID))

	// Still reachable by id, just inactive.
	fetched, _, err := env.groupService.GetGroupWithMembers(group.ID)
	require.NoError(t, err)
	require.False(t, fetched.Active)

	groups, err := env.groupService.ListGroups(ListGroupsInput{})
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestGroupService_UpdateGroup_CycleRejected(t *testing.T) {
	env := setupGroupTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")

	parent, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Parent", CreatorID: leader.ID})
	require.NoError(t, err)

	child, err := env.groupService.CreateGroup(CreateGroupInput{
		Name:          "Child",
		ParentGroupID: &parent.ID,
		CreatorID:     leader.ID,
	})
	require.NoError(t, err)

	// Re-parenting the root under its own descendant closes a loop.
	_, err = env.groupService.UpdateGroup(parent.ID, leader.ID, UpdateGroupInput{
		ParentGroupID: &child.ID,
	})
	require.ErrorIs(t, err, ErrGroupCycle)

	_, err = env.groupService.UpdateGroup(parent.ID, leader.ID, UpdateGroupInput{
		ParentGroupID: &parent.ID,
	})
	require.ErrorIs(t, err, ErrGroupCycle)
}
