package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var dto domain.RegisterUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, mailStatus, err := h.authService.Register(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "User registered, OTP sent",
		"userId":    user.ID,
		"otpStatus": mailStatus,
	})
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var dto domain.VerifyOtpDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.VerifyOTP(c.Request.Context(), dto); err != nil {
		if errors.Is(err, service.ErrAlreadyVerified) || errors.Is(err, service.ErrInvalidOTP) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified, registration complete"})
}

// POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var dto domain.ResendOtpDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mailStatus, err := h.authService.ResendOTP(c.Request.Context(), dto.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyVerified) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP resent", "otpStatus": mailStatus})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, service.ErrAccountNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account not verified"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusOK, authResponse)
}
