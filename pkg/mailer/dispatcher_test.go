package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	tpl "github.com/oksasatya/go-otp-auth/pkg/mailer/templates"
)

type sentMail struct {
	to, subject, text, html string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to, subject, text, html})
	return nil
}

type fakePublisher struct {
	bodies []any
	err    error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	p.bodies = append(p.bodies, body)
	return nil
}

func TestRenderRawJob(t *testing.T) {
	subject, text, html, err := Render(EmailJob{To: "a@b.co", Subject: "Hi", Text: "plain"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", subject)
	assert.Equal(t, "plain", text)
	assert.Empty(t, html)

	_, _, _, err = Render(EmailJob{To: "a@b.co", Subject: "Hi"})
	assert.Error(t, err)
}

func TestDeliverTemplate(t *testing.T) {
	s := &recordingSender{}
	job := EmailJob{To: "ann@x.com", Template: tpl.VerifyOTP, Data: tpl.NewVerifyOTPData(nil, "Ann", "ann@x.com", "123456")}

	require.NoError(t, Deliver(context.Background(), s, job))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "ann@x.com", s.sent[0].to)
	assert.Equal(t, "Account Verification OTP", s.sent[0].subject)
	assert.Contains(t, s.sent[0].html, "123456")
}

func TestDeliverSendFailure(t *testing.T) {
	s := &recordingSender{err: errors.New("smtp down")}
	err := Deliver(context.Background(), s, EmailJob{To: "a@b.co", Subject: "x", Text: "y"})
	assert.ErrorContains(t, err, "smtp down")
}

func TestLocalDispatcherDeliversBeforeClose(t *testing.T) {
	s := &recordingSender{}
	d := NewLocalDispatcher(s, helpers.NewNopLogger(), 2, 8)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Dispatch(context.Background(), EmailJob{To: "a@b.co", Subject: "x", Text: "y"}))
	}
	d.Close()

	assert.Len(t, s.sent, 5)
	assert.ErrorIs(t, d.Dispatch(context.Background(), EmailJob{}), ErrDispatcherClosed)
	d.Close()
}

func TestLocalDispatcherSwallowsSendErrors(t *testing.T) {
	s := &recordingSender{err: errors.New("boom")}
	d := NewLocalDispatcher(s, helpers.NewNopLogger(), 1, 1)
	require.NoError(t, d.Dispatch(context.Background(), EmailJob{To: "a@b.co", Subject: "x", Text: "y"}))
	d.Close()
	assert.Empty(t, s.sent)
}

func TestQueueDispatcher(t *testing.T) {
	p := &fakePublisher{}
	d := NewQueueDispatcher(p)
	job := EmailJob{To: "a@b.co", Template: tpl.Welcome}

	require.NoError(t, d.Dispatch(context.Background(), job))
	assert.Equal(t, []any{job}, p.bodies)

	p.err = errors.New("channel closed")
	assert.Error(t, d.Dispatch(context.Background(), job))
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(&config.Config{MailSendEnabled: false}, helpers.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)
	assert.NoError(t, s.Send(context.Background(), "a@b.co", "s", "t", ""))

	_, err = NewSender(&config.Config{MailSendEnabled: true, MailProvider: "smtp"}, nil)
	assert.Error(t, err)

	s, err = NewSender(&config.Config{MailSendEnabled: true, MailProvider: "smtp", SMTPHost: "smtp.test", SMTPPort: 465, SMTPUser: "u@test", SMTPPass: "p"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "u@test", s.(*SMTP).From)

	s, err = NewSender(&config.Config{MailSendEnabled: true, MailProvider: "mailgun", MailgunDomain: "mg.test", MailgunAPIKey: "k", MailFrom: "f@test"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Mailgun{}, s)

	s, err = NewSender(&config.Config{MailSendEnabled: true, MailProvider: "sendgrid", SendGridAPIKey: "k", MailFrom: "f@test"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendGrid{}, s)

	_, err = NewSender(&config.Config{MailSendEnabled: true, MailProvider: "pigeon"}, nil)
	assert.Error(t, err)
}
