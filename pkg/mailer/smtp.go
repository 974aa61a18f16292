package mailer

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTP sends mail through an SMTP relay (Gmail by default, SSL on 465).
type SMTP struct {
	dialer *gomail.Dialer
	From   string
}

func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	if from == "" {
		from = user
	}
	return &SMTP{dialer: gomail.NewDialer(host, port, user, pass), From: from}
}

func (s *SMTP) Send(ctx context.Context, to, subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	switch {
	case text != "" && html != "":
		m.SetBody("text/plain", text)
		m.AddAlternative("text/html", html)
	case html != "":
		m.SetBody("text/html", html)
	default:
		m.SetBody("text/plain", text)
	}

	// gomail has no context support; honour cancellation before dialing
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}
