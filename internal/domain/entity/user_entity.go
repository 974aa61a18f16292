package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field.
// OTP codes are kept in plain text next to their expiry.
type User struct {
	ID                string
	Name              string
	Email             string
	Password          string
	IsAccountVerified bool

	VerifyOTP         string
	VerifyOTPExpireAt time.Time
	ResetOTP          string
	ResetOTPExpireAt  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
