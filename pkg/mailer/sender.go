package mailer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/config"
	tpl "github.com/oksasatya/go-otp-auth/pkg/mailer/templates"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// NewSender picks the transport configured by MAIL_PROVIDER.
func NewSender(cfg *config.Config, logger *logrus.Logger) (Sender, error) {
	if !cfg.MailSendEnabled {
		return &LogSender{Logger: logger}, nil
	}
	switch cfg.MailProvider {
	case "smtp", "":
		if cfg.SMTPUser == "" || cfg.SMTPPass == "" {
			return nil, fmt.Errorf("smtp not configured: SMTP_USER and SMTP_PASS are required")
		}
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom), nil
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailFrom == "" {
			return nil, fmt.Errorf("mailgun not configured")
		}
		return NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" || cfg.MailFrom == "" {
			return nil, fmt.Errorf("sendgrid not configured")
		}
		return NewSendGrid(cfg.SendGridAPIKey, cfg.CompanyName, cfg.MailFrom), nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
}

// LogSender only logs; used when MAIL_SEND_ENABLED=false.
type LogSender struct {
	Logger *logrus.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, _, _ string) error {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("mail sending disabled; email dropped")
	}
	return nil
}

// Render resolves the subject and bodies of job, using its template when set.
func Render(job EmailJob) (subject, text, html string, err error) {
	if !job.IsTemplate() {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", fmt.Errorf("email job needs a template or subject with text/html")
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	return tpl.Render(job.Template, job.Data)
}

// Deliver renders job and sends it with s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	subject, text, html, err := Render(job)
	if err != nil {
		return fmt.Errorf("render %s: %w", job.Template, err)
	}
	if err := s.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send to %s: %w", job.To, err)
	}
	return nil
}
