// Package otp holds the one-time code state machine used for email
// verification and password reset. It only mutates the user record;
// persistence and delivery belong to the caller.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
)

// Purpose selects which pair of OTP fields on the user record is used.
type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeReset  Purpose = "reset"
)

const (
	VerifyWindow = 24 * time.Hour
	ResetWindow  = 15 * time.Minute
)

// State of one purpose on one user record.
type State string

const (
	StateNone    State = "NONE"
	StatePending State = "PENDING"
	StateExpired State = "EXPIRED"
)

var (
	ErrAlreadyCompleted = errors.New("otp: account already verified")
	ErrNoActiveCode     = errors.New("otp: no active code")
	ErrExpired          = errors.New("otp: code expired")
	ErrMismatch         = errors.New("otp: code mismatch")
	ErrUnknownPurpose   = errors.New("otp: unknown purpose")
)

// Generator produces a fresh code.
type Generator func() (string, error)

// Machine issues and consumes codes. Zero value is usable and uses the
// wall clock and a crypto/rand six digit generator.
type Machine struct {
	Now      func() time.Time
	Generate Generator
}

// NewMachine returns a Machine with default clock and generator.
func NewMachine() *Machine {
	return &Machine{Now: time.Now, Generate: SixDigitCode}
}

// SixDigitCode draws a code uniformly from 100000-999999.
func SixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp: generate: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Window returns how long a code of the given purpose stays valid.
func Window(p Purpose) time.Duration {
	if p == PurposeReset {
		return ResetWindow
	}
	return VerifyWindow
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Machine) generate() (string, error) {
	if m.Generate != nil {
		return m.Generate()
	}
	return SixDigitCode()
}

// fields returns pointers to the code and expiry of the purpose.
func fields(u *entity.User, p Purpose) (*string, *time.Time, error) {
	switch p {
	case PurposeVerify:
		return &u.VerifyOTP, &u.VerifyOTPExpireAt, nil
	case PurposeReset:
		return &u.ResetOTP, &u.ResetOTPExpireAt, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownPurpose, p)
}

// Issue sets a new code and expiry for the purpose, replacing any
// outstanding code.
func (m *Machine) Issue(u *entity.User, p Purpose) (string, time.Time, error) {
	code, exp, err := fields(u, p)
	if err != nil {
		return "", time.Time{}, err
	}
	if p == PurposeVerify && u.IsAccountVerified {
		return "", time.Time{}, ErrAlreadyCompleted
	}
	c, err := m.generate()
	if err != nil {
		return "", time.Time{}, err
	}
	*code = c
	*exp = m.now().Add(Window(p))
	return c, *exp, nil
}

// Consume checks supplied against the outstanding code. On success the code
// is cleared, and for verification the account is marked verified. On any
// failure the record is left as it was.
func (m *Machine) Consume(u *entity.User, p Purpose, supplied string) error {
	code, exp, err := fields(u, p)
	if err != nil {
		return err
	}
	if p == PurposeVerify && u.IsAccountVerified {
		return ErrAlreadyCompleted
	}
	if *code == "" {
		return ErrNoActiveCode
	}
	if m.now().After(*exp) {
		return ErrExpired
	}
	if supplied != *code {
		return ErrMismatch
	}
	*code = ""
	*exp = time.Time{}
	if p == PurposeVerify {
		u.IsAccountVerified = true
	}
	return nil
}

// State reports the current state of the purpose on u.
func (m *Machine) State(u *entity.User, p Purpose) State {
	code, exp, err := fields(u, p)
	if err != nil || *code == "" {
		return StateNone
	}
	if m.now().After(*exp) {
		return StateExpired
	}
	return StatePending
}
