package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// MailSender delivers one rendered template to one recipient.
type MailSender interface {
	SendMail(template, to, subject string, data map[string]any) error
}

// SendMailTask delivers a notification email off the request path, so
// a slow or flaky SMTP server never blocks an HTTP response.
type SendMailTask struct {
	Template string         `json:"template"`
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Data     map[string]any `json:"data"`
}

// Config returns the queue configuration for mail delivery tasks.
func (t SendMailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_mail",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendMailProcessor creates a processor function for SendMailTask.
func SendMailProcessor(sender MailSender) backlite.QueueProcessor[SendMailTask] {
	return func(ctx context.Context, task SendMailTask) error {
		if sender == nil {
			return fmt.Errorf("mail sender not configured")
		}

		if err := sender.SendMail(task.Template, task.To, task.Subject, task.Data); err != nil {
			return fmt.Errorf("send mail %s to %s: %w", task.Template, task.To, err)
		}

		log.Printf("[TASK] Sent %s mail to %s", task.Template, task.To)
		return nil
	}
}

// NewSendMailQueue creates a backlite queue for mail delivery tasks.
func NewSendMailQueue(sender MailSender) backlite.Queue {
	return backlite.NewQueue(SendMailProcessor(sender))
}
