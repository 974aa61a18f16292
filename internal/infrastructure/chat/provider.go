// Package chat holds the conversational API providers behind POST /api/chat.
package chat

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/internal/application"
)

// New builds the provider selected by CHAT_PROVIDER
func New(ctx context.Context, cfg *config.Config) (application.ChatProvider, error) {
	switch cfg.ChatProvider {
	case "cohere":
		return NewCohere(cfg.CohereAPIKey, cfg.CohereModel, cfg.ChatTimeout), nil
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return nil, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
}
