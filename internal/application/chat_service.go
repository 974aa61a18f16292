package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/pkg/helpers"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrChatCooldown = errors.New("chat cooldown active")
	ErrChatProvider = errors.New("chat provider failed")
)

// NoReply is returned to the user when the provider answers with nothing
const NoReply = "No response from chat provider."

// ChatProvider answers a single message
type ChatProvider interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Cooldown reports whether key may act now, and arms the window if so
type Cooldown interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

type ChatService struct {
	Provider ChatProvider
	Cooldown Cooldown
	Window   time.Duration
	Timeout  time.Duration
	Logger   *logrus.Logger
}

func NewChatService(p ChatProvider, cd Cooldown, window, timeout time.Duration, logger *logrus.Logger) *ChatService {
	return &ChatService{Provider: p, Cooldown: cd, Window: window, Timeout: timeout, Logger: logger}
}

func cooldownKey(userID string) string {
	return "chat:cooldown:" + userID
}

// Send forwards message to the provider on behalf of userID
func (s *ChatService) Send(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	if s.Cooldown != nil && s.Window > 0 {
		ok, err := s.Cooldown.Allow(ctx, cooldownKey(userID), s.Window)
		if err != nil {
			// fail open when the cooldown store is unavailable
			helpers.LogError(s.Logger, "chat cooldown check failed", err, logrus.Fields{"user_id": userID})
		} else if !ok {
			return "", ErrChatCooldown
		}
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	reply, err := s.Provider.Reply(ctx, message)
	if err != nil {
		helpers.LogError(s.Logger, "chat provider failed", err, logrus.Fields{"user_id": userID})
		return "", fmt.Errorf("%w: %v", ErrChatProvider, err)
	}
	if strings.TrimSpace(reply) == "" {
		return NoReply, nil
	}
	return reply, nil
}
