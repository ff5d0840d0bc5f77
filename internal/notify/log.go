package notify

import "go.uber.org/zap"

// LogNotifier writes notifications to the log instead of sending them.
// Used in development when no SMTP host is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification and reports success.
func (n *LogNotifier) Send(toEmail, subject, body string) error {
	n.logger.Info("notification",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
