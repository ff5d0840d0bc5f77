package services

import (
	"testing"

	"github.com/calentasker/calentasker-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type commentTestEnv struct {
	db             *gorm.DB
	commentService *CommentService
	taskService    *TaskService
	groupService   *GroupService
}

func setupCommentTestEnv(t *testing.T) commentTestEnv {
	t.Helper()

	db := openTestDB(t)

	commentRepo := repository.NewCommentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)

	return commentTestEnv{
		db:             db,
		commentService: NewCommentService(commentRepo, taskRepo, groupRepo),
		taskService:    NewTaskService(taskRepo, groupRepo),
		groupService:   NewGroupService(groupRepo, userRepo),
	}
}

func TestCommentService_CreateComment(t *testing.T) {
	env := setupCommentTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)
	_, err = env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &reader.ID}, "")
	require.NoError(t, err)

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Discuss",
		GroupID:   &group.ID,
		CreatorID: leader.ID,
	})
	require.NoError(t, err)

	// Any member may comment, even a reader.
	comment, err := env.commentService.CreateComment(task.ID, reader.ID, "looks good")
	require.NoError(t, err)
	require.Equal(t, reader.ID, comment.UserID)

	_, err = env.commentService.CreateComment(task.ID, outsider.ID, "drive-by")
	require.ErrorIs(t, err, ErrNotGroupMember)

	_, err = env.commentService.CreateComment(task.ID, reader.ID, "")
	require.ErrorIs(t, err, ErrContentRequired)
}

func TestCommentService_AuthorOnlyModification(t *testing.T) {
	env := setupCommentTestEnv(t)
	leader := createTestUser(t, env.db, "leader@example.com", "leader")
	reader := createTestUser(t, env.db, "reader@example.com", "reader")

	group, err := env.groupService.CreateGroup(CreateGroupInput{Name: "Team", CreatorID: leader.ID})
	require.NoError(t, err)
	_, err = env.groupService.AddMember(group.ID, leader.ID, MemberRef{UserID: &reader.ID}, "")
	require.NoError(t, err)

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Discuss",
		GroupID:   &group.ID,
		CreatorID: leader.ID,
	})
	require.NoError(t, err)

	comment, err := env.commentService.CreateComment(task.ID, reader.ID, "original")
	require.NoError(t, err)

	// The leader role grants nothing over someone else's comment.
	_, err = env.commentService.UpdateComment(comment.ID, leader.ID, "overwritten")
	require.ErrorIs(t, err, ErrNotCommentAuthor)
	require.ErrorIs(t, env.commentService.SoftDeleteComment(comment.ID, leader.ID), ErrNotCommentAuthor)

	updated, err := env.commentService.UpdateComment(comment.ID, reader.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Content)

	require.NoError(t, env.commentService.SoftDeleteComment(comment.ID, reader.ID))

	comments, err := env.commentService.ListComments(task.ID, reader.ID)
	require.NoError(t, err)
	require.Empty(t, comments)
}

func TestCommentService_PersonalTaskCreatorOnly(t *testing.T) {
	env := setupCommentTestEnv(t)
	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	other := createTestUser(t, env.db, "other@example.com", "other")

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Private",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	_, err = env.commentService.CreateComment(task.ID, other.ID, "hello")
	require.ErrorIs(t, err, ErrNotTaskCreator)

	_, err = env.commentService.CreateComment(task.ID, owner.ID, "note to self")
	require.NoError(t, err)
}
