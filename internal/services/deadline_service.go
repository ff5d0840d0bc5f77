package services

import (
	"fmt"
	"time"

	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/notify"
	"github.com/calentasker/calentasker-api/internal/repository"
	"go.uber.org/zap"
)

// DeadlineService is the batch job behind the missed-status transition. It is
// the only writer of that status; user edits never set it directly.
type DeadlineService struct {
	taskRepo repository.TaskRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewDeadlineService creates a new DeadlineService.
func NewDeadlineService(taskRepo repository.TaskRepository, notifier notify.Notifier, logger *zap.Logger) *DeadlineService {
	return &DeadlineService{
		taskRepo: taskRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	Missed         int
	Reminded       int
	NotifyFailures int
}

// Sweep runs both passes: overdue tasks become missed (with a notification to
// the assignee), tasks due tomorrow get a reminder. The passes are
// independent, tasks within a pass are processed independently, and a failed
// notification is logged without aborting anything; the status change it
// followed has already committed.
func (s *DeadlineService) Sweep() (SweepReport, error) {
	var report SweepReport

	today, tomorrow, dayAfter := sweepWindow(time.Now())

	overdue, err := s.taskRepo.FindOverdue(today)
	if err != nil {
		return report, fmt.Errorf("failed to select overdue tasks: %w", err)
	}

	for _, task := range overdue {
		// The exclusion predicate is re-checked inside MarkMissed, so a
		// task completed since selection is skipped here.
		marked, err := s.taskRepo.MarkMissed(task.ID)
		if err != nil {
			s.logger.Error("failed to mark task missed",
				zap.Uint64("task_id", task.ID),
				zap.Error(err),
			)
			continue
		}
		if !marked {
			continue
		}

		report.Missed++
		s.logger.Info("task marked missed",
			zap.Uint64("task_id", task.ID),
			zap.String("title", task.Title),
		)

		if !s.notifyAssignee(task,
			fmt.Sprintf("MISSED: %s", task.Title),
			fmt.Sprintf("Task '%s' was due on %s and is now marked as missed.", task.Title, formatDueDate(task.DueDate)),
		) {
			report.NotifyFailures++
		}
	}

	upcoming, err := s.taskRepo.FindDueBetween(tomorrow, dayAfter)
	if err != nil {
		return report, fmt.Errorf("failed to select upcoming tasks: %w", err)
	}

	for _, task := range upcoming {
		report.Reminded++
		if !s.notifyAssignee(task,
			fmt.Sprintf("REMINDER: %s is due tomorrow", task.Title),
			fmt.Sprintf("Task '%s' is due on %s. Please ensure it is completed.", task.Title, formatDueDate(task.DueDate)),
		) {
			report.NotifyFailures++
		}
	}

	return report, nil
}

// notifyAssignee sends best-effort email to the task's assignee. Tasks with
// no assignee or no email count as delivered.
func (s *DeadlineService) notifyAssignee(task models.Task, subject, body string) bool {
	if task.AssignedTo == nil || task.AssignedTo.Email == "" {
		s.logger.Info("task has no assignee email, skipping notification",
			zap.Uint64("task_id", task.ID),
		)
		return true
	}

	if err := s.notifier.Send(task.AssignedTo.Email, subject, body); err != nil {
		s.logger.Warn("failed to send notification",
			zap.Uint64("task_id", task.ID),
			zap.String("to", task.AssignedTo.Email),
			zap.Error(err),
		)
		return false
	}

	return true
}

// sweepWindow computes the calendar-day boundaries for one sweep. AddDate
// keeps the boundaries at midnight across DST transitions, where fixed
// 24-hour arithmetic would drift by an hour.
func sweepWindow(now time.Time) (today, tomorrow, dayAfter time.Time) {
	today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow = today.AddDate(0, 0, 1)
	dayAfter = today.AddDate(0, 0, 2)
	return today, tomorrow, dayAfter
}

func formatDueDate(due *time.Time) string {
	if due == nil {
		return "unknown"
	}
	return due.Format("2006-01-02")
}
