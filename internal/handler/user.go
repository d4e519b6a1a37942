package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"users-service/internal/repository"
	"users-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler interface {
	Ping(c *gin.Context)
	CreateUser(c *gin.Context)
	GetAllUsers(c *gin.Context)
	GetUserByID(c *gin.Context)
}

type userHandler struct {
	authService service.AuthService
	userRepo    repository.UserRepository
	log         *logrus.Logger
}

func NewUserHandler(authService service.AuthService, userRepo repository.UserRepository, log *logrus.Logger) UserHandler {
	return &userHandler{authService: authService, userRepo: userRepo, log: log}
}

// Ping handles the health-check routes.
func (h *userHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "pong!"})
}

// CreateUser handles POST /users. The route is admin-only; the gate and the
// admin check run before this handler.
func (h *userHandler) CreateUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid payload."})
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Sorry. That email already exists."})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid payload."})
			return
		}
		h.log.Errorf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("%s was added!", user.Email),
	})
}

// GetAllUsers handles GET /users and lists users in creation order.
func (h *userHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userRepo.GetAllUsers()
	if err != nil {
		h.log.Errorf("Failed to list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"users": users}})
}

// GetUserByID handles GET /users/:id.
func (h *userHandler) GetUserByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "User ID should be an integer."})
		return
	}

	user, err := h.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "User does not exist."})
			return
		}
		h.log.Errorf("Failed to get user %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": user})
}
