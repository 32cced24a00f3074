// Package notify sends best-effort email notifications about estimation
// outcomes.
package notify

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/teamsizer/sizeup/internal/task"
)

// EmailNotifier emails the configured recipient when a task is finalized.
// Send failures are logged and swallowed; notification is never on the
// request's critical path.
type EmailNotifier struct {
	apiKey      string
	fromName    string
	fromAddress string
	toAddress   string
}

func NewEmailNotifier(apiKey, fromName, fromAddress, toAddress string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:      apiKey,
		fromName:    fromName,
		fromAddress: fromAddress,
		toAddress:   toAddress,
	}
}

func (n *EmailNotifier) TaskFinalized(t *task.Task) {
	go func() {
		subject := fmt.Sprintf("Task finalized: %s (%s)", t.Title, t.Size)
		body := fmt.Sprintf(
			"%q was finalized at size %s (%d points) with %d votes recorded.",
			t.Title, t.Size, t.Points, len(t.Votes),
		)

		from := mail.NewEmail(n.fromName, n.fromAddress)
		to := mail.NewEmail("", n.toAddress)
		email := mail.NewSingleEmail(from, subject, to, body, body)

		client := sendgrid.NewSendClient(n.apiKey)
		response, err := client.Send(email)
		if err != nil {
			log.Printf("failed to send finalize notification: %v", err)
			return
		}
		if response.StatusCode >= 400 {
			log.Printf("sendgrid error: status %d", response.StatusCode)
			return
		}

		log.Printf("Finalize notification sent for task %s (status: %d)", t.ID, response.StatusCode)
	}()
}
