package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/resend/resend-go/v2"
)

// EmailDriver sends transactional emails via Resend. The recipient is the
// user's email address, resolved by the router before the task is queued.
type EmailDriver struct {
	client    *resend.Client
	fromEmail string
}

func NewEmailDriver(apiKey string) *EmailDriver {
	if apiKey == "" {
		apiKey = os.Getenv("RESEND_API_KEY")
	}

	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		from = "avisos@voluntapp.edu"
	}

	return &EmailDriver{
		client:    resend.NewClient(apiKey),
		fromEmail: from,
	}
}

func (d *EmailDriver) Channel() Channel {
	return Email
}

func (d *EmailDriver) Send(ctx context.Context, recipient, title, body string, data map[string]string) error {
	params := &resend.SendEmailRequest{
		From:    d.fromEmail,
		To:      []string{recipient},
		Subject: title,
		Text:    body,
	}

	_, err := d.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return nil
}
