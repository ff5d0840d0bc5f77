// Package notify delivers task notifications by email. Delivery failures are
// the caller's to log; they never abort the operation that triggered them.
package notify

// Notifier sends a notification to a single recipient.
type Notifier interface {
	Send(toEmail, subject, body string) error
}
