package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"users-service/internal/models"
	"users-service/internal/repository"
	"users-service/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userContextKey = "currentUser"

// TokenValidator validates a bearer token string against a clock value and
// returns the subject user ID.
type TokenValidator interface {
	Validate(tokenString string, now time.Time) (int64, error)
}

// Authenticate creates a Gin middleware that converts the Authorization
// header into a verified, active principal. Failure precedence: a malformed,
// tampered or expired token is rejected before the user is even looked up,
// and an unknown or inactive user is rejected before any privilege check.
func Authenticate(tokens TokenValidator, users repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Provide a valid auth token."})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Provide a valid auth token."})
			return
		}

		userID, err := tokens.Validate(parts[1], time.Now())
		if err != nil {
			if errors.Is(err, token.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Signature expired. Please log in again."})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Invalid token. Please log in again."})
			return
		}

		user, err := users.GetUserByID(userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Provide a valid auth token."})
				return
			}
			logger.Error("Failed to resolve token subject", zap.Int64("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "fail", "message": "Something went wrong."})
			return
		}

		if !user.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Provide a valid auth token."})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin rejects non-admin principals. It must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.Admin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You do not have permission to do that."})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the principal resolved by Authenticate, or nil when
// the request did not pass through it.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
