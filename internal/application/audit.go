package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-otp-auth/internal/domain/repository"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
)

// Audit actions
const (
	ActionRegister      = "register"
	ActionLogin         = "login"
	ActionLoginFailed   = "login_failed"
	ActionLogout        = "logout"
	ActionVerifyOTPSent = "verify_otp_sent"
	ActionVerified      = "account_verified"
	ActionResetOTPSent  = "reset_otp_sent"
	ActionPasswordReset = "password_reset"
)

const auditTimeout = 5 * time.Second

type requestMetaKey struct{}

// RequestMeta carries client details of the current request for the audit trail
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

// WithRequestMeta attaches request details to ctx
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the request details attached to ctx, if any
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

// auditor records auth actions. A nil repository turns it into a no-op.
type auditor struct {
	repo   repo.AuditRepository
	logger *logrus.Logger
}

func (a auditor) record(ctx context.Context, action, userID, email string, meta map[string]any) {
	if a.repo == nil {
		return
	}
	rm := RequestMetaFrom(ctx)
	if rm.RequestID != "" {
		if meta == nil {
			meta = map[string]any{}
		}
		meta["request_id"] = rm.RequestID
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	err := a.repo.Insert(ctx, repo.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        rm.IP,
		UserAgent: rm.UserAgent,
		Metadata:  meta,
	})
	if err != nil {
		helpers.LogError(a.logger, "audit insert failed", err, logrus.Fields{"action": action, "user_id": userID})
	}
}
