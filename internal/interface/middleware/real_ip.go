package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-otp-auth/internal/application"
)

// realIP picks CF-Connecting-IP, then the left-most X-Forwarded-For entry,
// then Gin's ClientIP.
func realIP(c *gin.Context) string {
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}

// RealIP stores the client IP under "real_ip" and attaches the request
// details used by the audit trail to the request context. Must run after
// RequestIDMiddleware.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := realIP(c)
		c.Set("real_ip", ip)
		ctx := application.WithRequestMeta(c.Request.Context(), application.RequestMeta{
			IP:        ip,
			UserAgent: c.Request.UserAgent(),
			RequestID: c.GetString("request_id"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
