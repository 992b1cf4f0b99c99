package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/services"
	"github.com/teatime/teashop-api/utils"
)

// RegisterRequest represents the request body for signing up
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"max=30"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func newAuthService() *services.AuthService {
	return services.NewAuthService(config.GetDB(), services.NewTokenService(config.GetConfig()))
}

// Register handles POST /api/v1/auth/register - creates a customer account
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	user, err := newAuthService().Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.RespondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		respondDatabaseError(c, err, "Failed to create user")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login - sets the session cookie and returns the token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	user, token, expiresAt, err := newAuthService().Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		respondDatabaseError(c, err, "Failed to log in")
		return
	}

	setSessionCookie(c, token, int(time.Until(expiresAt).Seconds()))

	utils.RespondSuccess(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// Logout handles POST /api/v1/auth/logout - clears the session cookie
func Logout(c *gin.Context) {
	setSessionCookie(c, "", -1)
	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func setSessionCookie(c *gin.Context, value string, maxAge int) {
	cfg := config.GetConfig()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, value, maxAge, "/", "", cfg.CookieSecure, true)
}
