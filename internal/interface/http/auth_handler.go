package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
	"github.com/oksasatya/go-otp-auth/internal/domain/otp"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/response"
)

type AuthHandler struct {
	Auth    *application.AuthService
	OTP     *application.OTPService
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, otpSvc *application.OTPService, jwt *helpers.JWTManager, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, OTP: otpSvc, JWT: jwt, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,simpleemail"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,simpleemail"`
	Password string `json:"password" binding:"required"`
}

type verifyAccountRequest struct {
	OTP string `json:"otp" binding:"required"`
}

type sendResetOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type userView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	response.Envelope
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func newAuthResponse(message string, res *application.AuthResult) *authResponse {
	return &authResponse{
		Envelope: response.OK(message),
		Token:    res.Token,
		User:     viewOf(res.User),
	}
}

func viewOf(u *entity.User) userView {
	return userView{Name: u.Name, Email: u.Email}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req, fieldMessages{
		"required":    "Missing Details",
		"simpleemail": msgInvalidEmail,
		"pwd":         msgPasswordTooShort,
	}) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err, "Error during registration. Please try again later.")
		return
	}
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusCreated, newAuthResponse("Registration successful", res))
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req, fieldMessages{
		"required":    "Email and Password are required",
		"simpleemail": msgInvalidEmail,
	}) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err, "Error during login. Please try again later.")
		return
	}
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, newAuthResponse("Login successful", res))
}

// Logout POST /api/auth/logout clears the token cookie. A still valid
// credential is recorded in the audit trail.
func (h *AuthHandler) Logout(c *gin.Context) {
	if tok, err := c.Cookie(helpers.TokenCookie); err == nil && tok != "" && h.JWT != nil {
		if claims, err := h.JWT.Verify(tok); err == nil {
			h.Auth.Logout(c.Request.Context(), claims.UserID)
		}
	}
	h.Cookies.Clear(c)
	response.Message(c, http.StatusOK, "Logged Out")
}

// SendVerifyOTP POST /api/auth/send-verify-otp (auth required)
func (h *AuthHandler) SendVerifyOTP(c *gin.Context) {
	if err := h.OTP.SendVerifyOTP(c.Request.Context(), c.GetString("userID")); err != nil {
		writeError(c, h.Logger, err, "An error occurred while sending the OTP")
		return
	}
	response.Message(c, http.StatusOK, "Verification OTP Sent to Email")
}

// VerifyAccount POST /api/auth/verify-account (auth required)
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	var req verifyAccountRequest
	if !bind(c, &req, fieldMessages{"required": "OTP is required"}) {
		return
	}
	err := h.OTP.VerifyAccount(c.Request.Context(), c.GetString("userID"), req.OTP)
	switch {
	case err == nil:
		response.Message(c, http.StatusOK, "Email verified successfully")
	case errors.Is(err, otp.ErrNoActiveCode), errors.Is(err, otp.ErrExpired):
		response.Error(c, http.StatusBadRequest, msgOTPReissued, nil)
	default:
		writeError(c, h.Logger, err, "An error occurred during email verification. Please try again later.")
	}
}

// IsAuthenticated GET /api/auth/is-auth (auth required)
func (h *AuthHandler) IsAuthenticated(c *gin.Context) {
	if _, err := h.Auth.GetUserData(c.Request.Context(), c.GetString("userID")); err != nil {
		writeError(c, h.Logger, err, "Internal server error.")
		return
	}
	response.Message(c, http.StatusOK, "User is authenticated.")
}

// SendResetOTP POST /api/auth/send-reset-otp
func (h *AuthHandler) SendResetOTP(c *gin.Context) {
	var req sendResetOTPRequest
	if !bind(c, &req, fieldMessages{"required": "Email is required"}) {
		return
	}
	if err := h.OTP.SendResetOTP(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err, "An error occurred while sending the OTP")
		return
	}
	response.Message(c, http.StatusOK, "OTP sent to your email")
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bind(c, &req, fieldMessages{
		"required": "Email, OTP, and new password are required",
		"pwd":      msgPasswordTooShort,
	}) {
		return
	}
	if err := h.OTP.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(c, h.Logger, err, "An error occurred while resetting the password")
		return
	}
	response.Message(c, http.StatusOK, "Password has been reset successfully")
}
