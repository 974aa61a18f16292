package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
	"github.com/oksasatya/go-otp-auth/internal/domain/otp"
	repo "github.com/oksasatya/go-otp-auth/internal/domain/repository"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/mailer"
	tpl "github.com/oksasatya/go-otp-auth/pkg/mailer/templates"
)

// OTPService loads the user, runs the OTP machine, persists and mails the code
type OTPService struct {
	Repo    repo.UserRepository
	Machine *otp.Machine
	Mail    mailer.Dispatcher
	Logger  *logrus.Logger
	Cfg     *config.Config
	audit   auditor
}

func NewOTPService(r repo.UserRepository, m *otp.Machine, mail mailer.Dispatcher, audit repo.AuditRepository, logger *logrus.Logger, cfg *config.Config) *OTPService {
	if m == nil {
		m = otp.NewMachine()
	}
	return &OTPService{
		Repo:    r,
		Machine: m,
		Mail:    mail,
		Logger:  logger,
		Cfg:     cfg,
		audit:   auditor{repo: audit, logger: logger},
	}
}

func (s *OTPService) byID(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *OTPService) byEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// issueAndSend issues a code, persists the record, then mails the code
func (s *OTPService) issueAndSend(ctx context.Context, u *entity.User, p otp.Purpose) error {
	code, exp, err := s.Machine.Issue(u, p)
	if err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	job := mailer.EmailJob{To: u.Email}
	opts := []tpl.Option{tpl.WithExpiresAt(exp), tpl.WithWindow(otp.Window(p))}
	action := ActionVerifyOTPSent
	if p == otp.PurposeReset {
		job.Template = tpl.ResetOTP
		job.Data = tpl.NewResetOTPData(s.Cfg, u.Name, u.Email, code, opts...)
		action = ActionResetOTPSent
	} else {
		job.Template = tpl.VerifyOTP
		job.Data = tpl.NewVerifyOTPData(s.Cfg, u.Name, u.Email, code, opts...)
	}
	dispatch(ctx, s.Mail, s.Logger, job)
	s.audit.record(ctx, action, u.ID, u.Email, map[string]any{"expires_at": exp})
	return nil
}

// SendVerifyOTP issues a verification code for an unverified account.
func (s *OTPService) SendVerifyOTP(ctx context.Context, userID string) error {
	u, err := s.byID(ctx, userID)
	if err != nil {
		return err
	}
	return s.issueAndSend(ctx, u, otp.PurposeVerify)
}

// VerifyAccount consumes the verification code. When no code is outstanding
// or the code has expired a fresh one is mailed and the original error is
// still returned.
func (s *OTPService) VerifyAccount(ctx context.Context, userID, code string) error {
	u, err := s.byID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.Machine.Consume(u, otp.PurposeVerify, code)
	switch {
	case err == nil:
		if err := s.Repo.Update(ctx, u); err != nil {
			return fmt.Errorf("save verification: %w", err)
		}
		s.audit.record(ctx, ActionVerified, u.ID, u.Email, nil)
		return nil
	case errors.Is(err, otp.ErrNoActiveCode), errors.Is(err, otp.ErrExpired):
		if rerr := s.issueAndSend(ctx, u, otp.PurposeVerify); rerr != nil {
			helpers.LogError(s.Logger, "otp reissue failed", rerr, logrus.Fields{"user_id": u.ID})
		}
		return err
	default:
		return err
	}
}

// SendResetOTP issues a password reset code for the account behind email.
func (s *OTPService) SendResetOTP(ctx context.Context, email string) error {
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueAndSend(ctx, u, otp.PurposeReset)
}

// ResetPassword consumes the reset code and replaces the password hash.
// The record is written once, with the code cleared and the new hash set.
func (s *OTPService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.Machine.Consume(u, otp.PurposeReset, code); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	if err := s.Repo.Update(ctx, u); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	s.audit.record(ctx, ActionPasswordReset, u.ID, u.Email, nil)
	return nil
}
