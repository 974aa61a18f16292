package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/response"
)

const CtxUserIDKey = "userID"

const (
	msgTokenMissing = "Authorization token missing. Please login again."
	msgTokenInvalid = "Invalid token. Please login again."
	msgTokenExpired = "Token has expired. Please login again."
)

// tokenFrom reads the bearer header first, then the token cookie
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	tok, err := c.Cookie(helpers.TokenCookie)
	if err != nil {
		return ""
	}
	return tok
}

// Auth validates the bearer credential and injects the user id into context
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, msgTokenMissing)
			return
		}
		claims, err := jwt.Verify(token)
		if err != nil {
			msg := msgTokenInvalid
			if errors.Is(err, helpers.ErrTokenExpired) {
				msg = msgTokenExpired
			}
			response.Abort(c, http.StatusUnauthorized, msg)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
