package handler

import (
	"errors"
	"net/http"

	"users-service/internal/middleware"
	"users-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Status(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	log         *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, log *logrus.Logger) AuthHandler {
	return &authHandler{authService: authService, log: log}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /auth/register. Registration logs the new user in:
// the response carries a freshly issued token bound to the account.
func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid payload."})
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Sorry. That user already exists."})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid payload."})
			return
		}
		h.log.Errorf("Failed to register user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
		return
	}

	tokenString, err := h.authService.IssueToken(user)
	if err != nil {
		h.log.Errorf("Failed to issue token for new user %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":     "success",
		"message":    "Successfully registered.",
		"auth_token": tokenString,
	})
}

// Login handles POST /auth/login.
func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid payload."})
		return
	}

	user, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "User does not exist."})
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Invalid credentials."})
			return
		}
		h.log.Errorf("Failed to login user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
		return
	}

	tokenString, err := h.authService.IssueToken(user)
	if err != nil {
		h.log.Errorf("Failed to issue token for user %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Successfully logged in.",
		"auth_token": tokenString,
	})
}

// Logout handles GET /auth/logout. Logout is advisory: the gate must admit
// the caller, but no server-side state changes and the token stays valid
// until its natural expiry. Clients are expected to discard it.
func (h *authHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Successfully logged out."})
}

// Status handles GET /auth/status and returns the resolved principal.
func (h *authHandler) Status(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": user})
}
