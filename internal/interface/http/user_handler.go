package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/pkg/response"
)

type UserHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(auth *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Auth: auth, Logger: logger}
}

type userData struct {
	Name              string `json:"name"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

type userDataResponse struct {
	response.Envelope
	UserData userData `json:"userData"`
}

// GetUserData GET /api/user/data (auth required)
func (h *UserHandler) GetUserData(c *gin.Context) {
	u, err := h.Auth.GetUserData(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err, "Internal server error.")
		return
	}
	response.Success(c, http.StatusOK, &userDataResponse{
		UserData: userData{Name: u.Name, IsAccountVerified: u.IsAccountVerified},
	})
}
