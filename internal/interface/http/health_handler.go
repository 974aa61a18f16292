package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-otp-auth/pkg/response"
)

// Health GET /api/health
func Health(c *gin.Context) {
	response.Message(c, http.StatusOK, "ok")
}
