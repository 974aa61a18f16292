package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/pkg/response"
)

type ChatHandler struct {
	Chat   *application.ChatService
	Logger *logrus.Logger
}

func NewChatHandler(chat *application.ChatService, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{Chat: chat, Logger: logger}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	response.Envelope
	Reply string `json:"reply"`
}

// Send POST /api/chat (auth required)
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatRequest
	if !bind(c, &req, fieldMessages{"required": "Message is required"}) {
		return
	}
	reply, err := h.Chat.Send(c.Request.Context(), c.GetString("userID"), req.Message)
	if err != nil {
		writeError(c, h.Logger, err, msgChatProvider)
		return
	}
	response.Success(c, http.StatusOK, &chatResponse{Reply: reply})
}
