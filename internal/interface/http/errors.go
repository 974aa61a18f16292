package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/internal/domain/otp"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/response"
	"github.com/oksasatya/go-otp-auth/pkg/validation"
)

const (
	msgInvalidPayload    = "Invalid request payload"
	msgInvalidEmail      = "Invalid email format"
	msgPasswordTooShort  = "Password must be at least 8 characters long"
	msgUserExists        = "User already exists"
	msgUserNotFound      = "User not found"
	msgIncorrectPassword = "Incorrect password"
	msgAlreadyVerified   = "Account already verified"
	msgOTPReissued       = "OTP has expired or is missing. A new OTP has been sent to your email."
	msgInvalidOTP        = "Invalid OTP"
	msgOTPExpired        = "OTP has expired"
	msgChatCooldown      = "Please wait before sending another message."
	msgChatProvider      = "Failed to fetch response from chat provider."
)

// statusOf maps service errors to a status and user facing message.
// ok is false for unexpected errors.
func statusOf(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, application.ErrUserExists):
		return http.StatusConflict, msgUserExists, true
	case errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound, msgUserNotFound, true
	case errors.Is(err, application.ErrIncorrectPassword):
		return http.StatusUnauthorized, msgIncorrectPassword, true
	case errors.Is(err, application.ErrPasswordTooShort):
		return http.StatusBadRequest, msgPasswordTooShort, true
	case errors.Is(err, otp.ErrAlreadyCompleted):
		return http.StatusBadRequest, msgAlreadyVerified, true
	case errors.Is(err, otp.ErrNoActiveCode), errors.Is(err, otp.ErrMismatch):
		return http.StatusBadRequest, msgInvalidOTP, true
	case errors.Is(err, otp.ErrExpired):
		return http.StatusBadRequest, msgOTPExpired, true
	case errors.Is(err, application.ErrEmptyMessage):
		return http.StatusBadRequest, "Message is required", true
	case errors.Is(err, application.ErrChatCooldown):
		return http.StatusTooManyRequests, msgChatCooldown, true
	case errors.Is(err, application.ErrChatProvider):
		return http.StatusBadGateway, msgChatProvider, true
	}
	return http.StatusInternalServerError, "", false
}

// writeError answers with the mapped status. Unexpected errors are logged
// and answered with fallback.
func writeError(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	status, msg, ok := statusOf(err)
	if !ok {
		helpers.LogError(logger, fallback, err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
		msg = fallback
	}
	response.Error(c, status, msg, nil)
}

// fieldMessages picks the message for the first failing field, keyed by
// "field.tag" or by tag alone.
type fieldMessages map[string]string

func (m fieldMessages) lookup(f validation.FieldFailure) string {
	if msg, ok := m[f.Field+"."+f.Tag]; ok {
		return msg
	}
	if msg, ok := m[f.Tag]; ok {
		return msg
	}
	return msgInvalidPayload
}

// bind decodes and validates the JSON body into dst. On failure it writes a
// 400 and returns false.
func bind(c *gin.Context, dst any, msgs fieldMessages) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	msg := msgInvalidPayload
	if f, ok := validation.First(err); ok {
		msg = msgs.lookup(f)
	}
	response.Error(c, http.StatusBadRequest, msg, validation.ToDetails(err))
	return false
}
