package main

import (
	"flag"
	"log"
	"time"

	"github.com/calentasker/calentasker-api/internal/config"
	"github.com/calentasker/calentasker-api/internal/database"
	"github.com/calentasker/calentasker-api/internal/notify"
	"github.com/calentasker/calentasker-api/internal/repository"
	"github.com/calentasker/calentasker-api/internal/services"
	"go.uber.org/zap"
)

// The sweeper marks overdue tasks as missed and sends due-tomorrow reminders.
// It runs once and exits, which suits cron; -interval keeps it resident
// instead.
func main() {
	interval := flag.Duration("interval", 0, "re-run the sweep at this interval (0 = run once and exit)")
	flag.Parse()

	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	var notifier notify.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.FromEmail,
		})
	} else {
		logger.Info("no SMTP host configured, logging notifications instead")
		notifier = notify.NewLogNotifier(logger)
	}

	taskRepo := repository.NewTaskRepository(database.GetDB())
	deadlineService := services.NewDeadlineService(taskRepo, notifier, logger)

	runSweep(deadlineService, logger)

	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		runSweep(deadlineService, logger)
	}
}

func runSweep(deadlineService *services.DeadlineService, logger *zap.Logger) {
	report, err := deadlineService.Sweep()
	if err != nil {
		logger.Error("sweep failed", zap.Error(err))
		return
	}

	logger.Info("sweep finished",
		zap.Int("missed", report.Missed),
		zap.Int("reminded", report.Reminded),
		zap.Int("notify_failures", report.NotifyFailures),
	)
}
