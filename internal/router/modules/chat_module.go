package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-otp-auth/internal/interface/http"
	"github.com/oksasatya/go-otp-auth/internal/interface/middleware"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
)

type ChatModule struct {
	Handler *handlers.ChatHandler
	JWT     *helpers.JWTManager
}

func NewChatModule(h *handlers.ChatHandler, jwt *helpers.JWTManager) *ChatModule {
	return &ChatModule{Handler: h, JWT: jwt}
}

// Register mounts POST /api/chat; the per-user cooldown lives in the service
func (m *ChatModule) Register(rg *gin.RouterGroup) {
	rg.POST("/chat", middleware.Auth(m.JWT), m.Handler.Send)
}
