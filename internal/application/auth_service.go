package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-otp-auth/internal/domain/repository"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/mailer"
	tpl "github.com/oksasatya/go-otp-auth/pkg/mailer/templates"
)

var (
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrPasswordTooShort  = errors.New("password too short")
)

// MinPasswordLength applies to registration and password reset
const MinPasswordLength = 8

// NormalizeEmail trims and lower-cases an address before storage or lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Mail   mailer.Dispatcher
	Logger *logrus.Logger
	Cfg    *config.Config
	audit  auditor
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, mail mailer.Dispatcher, audit repo.AuditRepository, logger *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		Repo:   r,
		JWT:    jwt,
		Mail:   mail,
		Logger: logger,
		Cfg:    cfg,
		audit:  auditor{repo: audit, logger: logger},
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrUserExists
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: strings.TrimSpace(in.Name), Email: email, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	s.sendMail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     tpl.NewWelcomeData(s.Cfg, u.Name, u.Email),
	})
	s.audit.record(ctx, ActionRegister, u.ID, u.Email, nil)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		s.audit.record(ctx, ActionLoginFailed, u.ID, u.Email, nil)
		return nil, ErrIncorrectPassword
	}
	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, ActionLogin, u.ID, u.Email, nil)
	return res, nil
}

// Logout only records the action; the credential is cleared by the caller.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	s.audit.record(ctx, ActionLogout, userID, "", nil)
}

// GetUserData loads the profile of an authenticated user
func (s *AuthService) GetUserData(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.JWT.Issue(u.ID)
	if err != nil {
		helpers.LogError(s.Logger, "issue token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) sendMail(ctx context.Context, job mailer.EmailJob) {
	dispatch(ctx, s.Mail, s.Logger, job)
}

// dispatch hands a job to the mail dispatcher; failures are logged only
func dispatch(ctx context.Context, d mailer.Dispatcher, logger *logrus.Logger, job mailer.EmailJob) {
	if d == nil {
		return
	}
	if err := d.Dispatch(ctx, job); err != nil {
		helpers.LogError(logger, "email dispatch failed", err, logrus.Fields{"to": job.To, "template": job.Template})
	}
}
