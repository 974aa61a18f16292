package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	client   *sendgrid.Client
	FromName string
	From     string
}

func NewSendGrid(apiKey, fromName, from string) *SendGrid {
	return &SendGrid{client: sendgrid.NewSendClient(apiKey), FromName: fromName, From: from}
}

func (s *SendGrid) Send(ctx context.Context, to, subject, text, html string) error {
	message := mail.NewSingleEmail(mail.NewEmail(s.FromName, s.From), subject, mail.NewEmail("", to), text, html)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
