package notify

import (
	"fmt"
	"net/smtp"
)

// SMTPConfig holds the SMTP connection settings.
type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
}

// SMTPNotifier sends plain-text email over SMTP.
type SMTPNotifier struct {
	config SMTPConfig
	auth   smtp.Auth
}

// NewSMTPNotifier creates a new SMTPNotifier.
func NewSMTPNotifier(config SMTPConfig) *SMTPNotifier {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &SMTPNotifier{
		config: config,
		auth:   auth,
	}
}

// Send delivers a plain-text message to a single recipient.
func (n *SMTPNotifier) Send(toEmail, subject, body string) error {
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		n.config.FromEmail,
		toEmail,
		subject,
		body,
	)

	addr := n.config.Host + ":" + n.config.Port
	if err := smtp.SendMail(addr, n.auth, n.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
		return fmt.Errorf("send mail to %s: %w", toEmail, err)
	}

	return nil
}
