package token

import (
	"errors"
	"strconv"
	"time"

	"users-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpiredToken means the token was well-formed and correctly signed
	// but its expiry timestamp has elapsed.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken covers everything else: malformed structure, signature
	// mismatch, unexpected signing method, or an unusable subject.
	ErrInvalidToken = errors.New("invalid token")
)

// Service issues and validates HS256-signed bearer tokens. It is a pure
// function of (claims, secret, clock) and is safe for concurrent use.
type Service struct {
	secret   []byte
	lifetime time.Duration
}

// NewService creates a token service. A zero or negative lifetime is legal
// and makes every freshly issued token immediately expired.
func NewService(secret []byte, lifetime time.Duration) *Service {
	return &Service{secret: secret, lifetime: lifetime}
}

// Issue signs a token for the given user ID, valid from now until
// now+lifetime.
func (s *Service) Issue(userID int64, now time.Time) (string, error) {
	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses and verifies a token string against the clock value given
// as now, returning the subject user ID. Expiry is inclusive: a token
// presented at exactly its expires_at timestamp is already expired.
func (s *Service) Validate(tokenString string, now time.Time) (int64, error) {
	claims := &models.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
