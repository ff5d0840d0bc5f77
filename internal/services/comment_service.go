package services

import (
	"errors"
	"fmt"

	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrContentRequired  = errors.New("comment content is required")
	ErrNotCommentAuthor = errors.New("only the comment author can modify this comment")
)

// CommentService handles comment business logic. Comments are author-owned:
// no group role, not even leader, grants edit or delete rights over someone
// else's comment.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	groupRepo   repository.GroupRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository, groupRepo repository.GroupRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		groupRepo:   groupRepo,
	}
}

// CreateComment adds a comment to a task the actor can view.
func (s *CommentService) CreateComment(taskID, actorID uint64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, ErrContentRequired
	}

	if err := s.requireTaskVisible(taskID, actorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID:  taskID,
		UserID:  actorID,
		Content: content,
		Active:  true,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// ListComments returns the active comments of a task, oldest first.
func (s *CommentService) ListComments(taskID, actorID uint64) ([]models.Comment, error) {
	if err := s.requireTaskVisible(taskID, actorID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

// UpdateComment replaces a comment's content. Author only.
func (s *CommentService) UpdateComment(commentID, actorID uint64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, ErrContentRequired
	}

	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	if comment.UserID != actorID {
		return nil, ErrNotCommentAuthor
	}

	comment.Content = content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// SoftDeleteComment marks a comment inactive. Author only; the comment's flag
// is independent of its task's.
func (s *CommentService) SoftDeleteComment(commentID, actorID uint64) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to find comment: %w", err)
	}

	if comment.UserID != actorID {
		return ErrNotCommentAuthor
	}

	if err := s.commentRepo.SoftDelete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

// requireTaskVisible checks the actor may see the task the comment hangs off:
// group membership for group tasks, creatorship for personal ones.
func (s *CommentService) requireTaskVisible(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if task.IsPersonal() {
		if task.CreatedByID != actorID {
			return ErrNotTaskCreator
		}
		return nil
	}

	if _, err := s.groupRepo.FindMember(*task.GroupID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	return nil
}
