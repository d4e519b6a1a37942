package service

import (
	"errors"
	"fmt"
	"time"

	"users-service/internal/crypto"
	"users-service/internal/models"
	"users-service/internal/repository"

	"go.uber.org/zap"
)

var ( // Define custom errors
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

type AuthService interface {
	Register(username, email, password string) (*models.User, error)
	Authenticate(email, password string) (*models.User, error)
	IssueToken(user *models.User) (string, error)
}

// TokenIssuer is the slice of the token service the auth service needs.
type TokenIssuer interface {
	Issue(userID int64, now time.Time) (string, error)
}

type authService struct {
	repo   repository.UserRepository
	hasher *crypto.PasswordHasher
	tokens TokenIssuer
	logger *zap.Logger
}

func NewAuthService(repo repository.UserRepository, hasher *crypto.PasswordHasher, tokens TokenIssuer, logger *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register hashes the password and attempts a single atomic insert. A
// concurrent insert that already claimed the username or email surfaces as
// ErrUserAlreadyExists; there is no check-then-insert window.
func (s *authService) Register(username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		Admin:        false,
	}

	err = s.repo.CreateUser(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("username", user.Username), zap.Int64("id", user.ID))
	return user, nil
}

// Authenticate looks the user up by email and verifies the password. An
// unknown email and a wrong password are distinct failures; the handler
// decides how much of that distinction to expose.
func (s *authService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken creates a fresh bearer token bound to the user.
func (s *authService) IssueToken(user *models.User) (string, error) {
	tokenString, err := s.tokens.Issue(user.ID, time.Now())
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
