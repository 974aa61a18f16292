package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// mailgunTimeout bounds a single API call when the caller has no deadline
const mailgunTimeout = 10 * time.Second

// Mailgun sends mail through the Mailgun HTTP API.
type Mailgun struct {
	client *mg.MailgunImpl
	From   string
}

// NewMailgun builds a sender for domain. from is a bare address or a
// "Name <address>" pair.
func NewMailgun(domain, apiKey, from string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), From: from}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if text == "" && html == "" {
		return fmt.Errorf("mailgun: empty body for %s", to)
	}
	msg := m.client.NewMessage(m.From, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mailgunTimeout)
		defer cancel()
	}
	if _, id, err := m.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailgun send %s (id %q): %w", to, id, err)
	}
	return nil
}
