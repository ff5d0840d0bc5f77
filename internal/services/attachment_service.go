package services

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/calentasker/calentasker-api/internal/authz"
	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/repository"
	"github.com/calentasker/calentasker-api/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrNotAttachmentOwner = errors.New("only the uploader or a task manager can delete this attachment")
	ErrFileNameRequired   = errors.New("file name is required")
)

// AttachmentService handles file attachments on tasks. The binary itself goes
// through the FileStore collaborator; the service only records its path.
type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	taskRepo       repository.TaskRepository
	groupRepo      repository.GroupRepository
	fileStore      storage.FileStore
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	taskRepo repository.TaskRepository,
	groupRepo repository.GroupRepository,
	fileStore storage.FileStore,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
		groupRepo:      groupRepo,
		fileStore:      fileStore,
	}
}

// Upload stores the file and records an attachment on a task the actor can view.
func (s *AttachmentService) Upload(taskID, actorID uint64, fileName, contentType string, r io.Reader) (*models.Attachment, error) {
	if fileName == "" {
		return nil, ErrFileNameRequired
	}

	task, err := s.findVisibleTask(taskID, actorID)
	if err != nil {
		return nil, err
	}

	path, err := s.fileStore.Store(r, filepath.Join("attachments", filepath.Base(fileName)))
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	attachment := &models.Attachment{
		TaskID:       task.ID,
		UploadedByID: actorID,
		FileName:     filepath.Base(fileName),
		FilePath:     path,
		ContentType:  contentType,
		UploadedAt:   time.Now(),
	}

	if err := s.attachmentRepo.Create(attachment); err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	return attachment, nil
}

// List returns the attachments of a task the actor can view.
func (s *AttachmentService) List(taskID, actorID uint64) ([]models.Attachment, error) {
	if _, err := s.findVisibleTask(taskID, actorID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	return attachments, nil
}

// Delete removes an attachment record. Allowed for the uploader, and for
// leaders/operators of a group task.
func (s *AttachmentService) Delete(attachmentID, actorID uint64) error {
	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("failed to find attachment: %w", err)
	}

	if attachment.UploadedByID != actorID {
		task, err := s.taskRepo.FindByID(attachment.TaskID)
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}
		if task.IsPersonal() {
			return ErrNotAttachmentOwner
		}

		member, err := s.groupRepo.FindMember(*task.GroupID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAttachmentOwner
			}
			return fmt.Errorf("failed to verify membership: %w", err)
		}
		if !authz.Can(member.Role, authz.ActionEditTask) {
			return ErrNotAttachmentOwner
		}
	}

	if err := s.attachmentRepo.Delete(attachmentID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	return nil
}

func (s *AttachmentService) findVisibleTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.IsPersonal() {
		if task.CreatedByID != actorID {
			return nil, ErrNotTaskCreator
		}
		return task, nil
	}

	if _, err := s.groupRepo.FindMember(*task.GroupID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotGroupMember
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	return task, nil
}
