package services

import (
	"testing"
	"time"

	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type taskTestEnv struct {
	db           *gorm.DB
	taskService  *TaskService
	groupService *GroupService
	taskRepo     repository.TaskRepository
}

func setupTaskTestEnv(t *testing.T) taskTestEnv {
	t.Helper()

	db := openTestDB(t)

	taskRepo := repository.NewTaskRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)

	return taskTestEnv{
		db:           db,
		taskService:  NewTaskService(taskRepo, groupRepo),
		groupService: NewGroupService(groupRepo, userRepo),
		taskRepo:     taskRepo,
	}
}

// setupGroupWithRoles creates a group led by leader, with operator and reader
// members holding the matching roles.
func setupGroupWithRoles(t *testing.T, env taskTestEnv, leaderID, operatorID, readerID uint64) *models.Group {
	t.Helper()

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leaderID})
	require.NoError(t, err)

	_, err = env.groupService.AddMember(group.ID, leaderID, MemberRef{UserID: &operatorID}, models.RoleOperator)
	require.NoError(t, err)
	_, err = env.groupService.AddMember(group.ID, leaderID, MemberRef{UserID: &readerID}, models.RoleReader)
	require.NoError(t, err)

	return group
}

func TestTaskService_CreateTask_RoleGate(t *testing.T) {
	env := setupTaskTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	operator := createTestUser(t, env.db, "operator@example.com", "operator")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")
	group := setupGroupWithRoles(t, env, leader.ID, operator.ID, reader.ID)

	_, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Reader attempt",
		GroupID:   &group.ID,
		CreatorID: reader.ID,
	})
	require.ErrorIs(t, err, ErrInsufficientRole)

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Operator task",
		GroupID:   &group.ID,
		CreatorID: operator.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusTodo, task.Status)
	require.Equal(t, models.PriorityLow, task.Priority)
}

func TestTaskService_CreateTask_Personal(t *testing.T) {
	env := setupTaskTestEnv(t)
	user := createTestUser(t, env.db, "solo@example.com", "solo")

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Buy groceries",
		CreatorID: user.ID,
	})
	require.NoError(t, err)
	require.True(t, task.IsPersonal())
}

func TestTaskService_CreateTask_MissedRejected(t *testing.T) {
	env := setupTaskTestEnv(t)
	user := createTestUser(t, env.db, "solo@example.com", "solo")

	_, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Sneaky",
		Status:    models.TaskStatusMissed,
		CreatorID: user.ID,
	})
	require.ErrorIs(t, err, ErrMissedReserved)
}

func TestTaskService_CreateTask_AssigneeMustBeMember(t *testing.T) {
	env := setupTaskTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	operator := createTestUser(t, env.db, "operator@example.com", "operator")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")
	group := setupGroupWithRoles(t, env, leader.ID, operator.ID, reader.ID)

	_, err := env.taskService.CreateTask(CreateTaskInput{
		Title:        "Misassigned",
		GroupID:      &group.ID,
		AssignedToID: &outsider.ID,
		CreatorID:    leader.ID,
	})
	require.ErrorIs(t, err, ErrInvalidAssignee)

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:        "Assigned to reader",
		GroupID:      &group.ID,
		AssignedToID: &reader.ID,
		CreatorID:    leader.ID,
	})
	require.NoError(t, err)
	require.Equal(t, reader.ID, *task.AssignedToID)
}

func TestTaskService_SoftDeleteTask(t *testing.T) {
	env := setupTaskTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	operator := createTestUser(t, env.db, "operator@example.com", "operator")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")
	group := setupGroupWithRoles(t, env, leader.ID, operator.ID, reader.ID)

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Short-lived",
		GroupID:   &group.ID,
		CreatorID: leader.ID,
	})
	require.NoError(t, err)

	require.ErrorIs(t, env.taskService.SoftDeleteTask(task.ID, reader.ID), ErrInsufficientRole)

	require.NoError(t, env.taskService.SoftDeleteTask(task.ID, operator.ID))

	// Still reachable by id, just inactive.
	deleted, err := env.taskRepo.FindByID(task.ID)
	require.NoError(t, err)
	require.False(t, deleted.Active)

	tasks, _, err := env.taskService.ListTasks(ListTasksInput{ActorID: leader.ID, GroupID: &group.ID})
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestTaskService_ListTasks_InactiveGroupHidesTasks(t *testing.T) {
	env := setupTaskTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Doomed", CreatorID: leader.ID})
	require.NoError(t, err)

	_, err = env.taskService.CreateTask(CreateTaskInput{
		Title:     "Group task",
		GroupID:   &group.ID,
		CreatorID: leader.ID,
	})
	require.NoError(t, err)

	personal, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Personal task",
		CreatorID: leader.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.groupService.SoftDeleteGroup(group.ID, leader.ID))

	// The group task itself is still active, but the dead group hides it.
	tasks, total, err := env.taskService.ListTasks(ListTasksInput{ActorID: leader.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, tasks, 1)
	require.Equal(t, personal.ID, tasks[0].ID)
}

func TestTaskService_ListTasks_GroupRequiresMembership(t *testing.T) {
	env := setupTaskTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)

	_, _, err = env.taskService.ListTasks(ListTasksInput{ActorID: outsider.ID, GroupID: &group.ID})
	require.ErrorIs(t, err, ErrNotGroupMember)
}

func TestTaskService_UpdateTask_StatusTransitions(t *testing.T) {
	env := setupTaskTestEnv(t)
	user := createTestUser(t, env.db, "solo@example.com", "solo")

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Lifecycle",
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	missed := models.TaskStatusMissed
	_, err = env.taskService.UpdateTask(task.ID, user.ID, UpdateTaskInput{Status: &missed})
	require.ErrorIs(t, err, ErrMissedReserved)

	done := models.TaskStatusDone
	updated, err := env.taskService.UpdateTask(task.ID, user.ID, UpdateTaskInput{Status: &done})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	require.WithinDuration(t, time.Now(), *updated.CompletedAt, time.Minute)

	todo := models.TaskStatusTodo
	reopened, err := env.taskService.UpdateTask(task.ID, user.ID, UpdateTaskInput{Status: &todo})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusTodo, reopened.Status)
	require.Nil(t, reopened.CompletedAt)
}

func TestTaskService_UpdateTask_ClearAssignee(t *testing.T) {
	env := setupTaskTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	operator := createTestUser(t, env.db, "operator@example.com", "operator")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")
	group := setupGroupWithRoles(t, env, leader.ID, operator.ID, reader.ID)

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:        "Handover",
		GroupID:      &group.ID,
		AssignedToID: &reader.ID,
		CreatorID:    leader.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, task.AssignedToID)

	updated, err := env.taskService.UpdateTask(task.ID, leader.ID, UpdateTaskInput{ClearAssignee: true})
	require.NoError(t, err)
	require.Nil(t, updated.AssignedToID)
}

func TestTaskService_UpdateTask_PersonalCreatorOnly(t *testing.T) {
	env := setupTaskTestEnv(t)
	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	other := createTestUser(t, env.db, "other@example.com", "other")

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Mine",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	title := "Yours now"
	_, err = env.taskService.UpdateTask(task.ID, other.ID, UpdateTaskInput{Title: &title})
	require.ErrorIs(t, err, ErrNotTaskCreator)
}

func TestTaskService_AssignUsers(t *testing.T) {
	env := setupTaskTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	operator := createTestUser(t, env.db, "operator@example.com", "operator")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")
	group := setupGroupWithRoles(t, env, leader.ID, operator.ID, reader.ID)

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Shared work",
		GroupID:   &group.ID,
		CreatorID: leader.ID,
	})
	require.NoError(t, err)

	err = env.taskService.AssignUsers(task.ID, leader.ID, []uint64{reader.ID, outsider.ID})
	require.ErrorIs(t, err, ErrInvalidAssignee)

	require.NoError(t, env.taskService.AssignUsers(task.ID, leader.ID, []uint64{reader.ID, operator.ID}))

	var count int64
	require.NoError(t, env.db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)

	// Re-assigning is a no-op, not an error.
	require.NoError(t, env.taskService.AssignUsers(task.ID, leader.ID, []uint64{reader.ID}))
	require.NoError(t, env.db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)

	require.NoError(t, env.taskService.UnassignUsers(task.ID, leader.ID, []uint64{reader.ID}))
	require.NoError(t, env.db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestTaskService_AssignUsers_PersonalOnlyCreator(t *testing.T) {
	env := setupTaskTestEnv(t)
	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	other := createTestUser(t, env.db, "other@example.com", "other")

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Mine",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	err = env.taskService.AssignUsers(task.ID, owner.ID, []uint64{other.ID})
	require.ErrorIs(t, err, ErrInvalidAssignee)

	require.NoError(t, env.taskService.AssignUsers(task.ID, owner.ID, []uint64{owner.ID}))
}
