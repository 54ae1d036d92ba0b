// File: internal/infrastructure/security/session_jwt.go
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inkwell-cms/admin-auth/internal/domain/interfaces"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

const sessionIssuer = "admin-auth"

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// hmacSessionTokenService signs admin session tokens with HS256.
type hmacSessionTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokenService creates a new hmacSessionTokenService.
func NewSessionTokenService(secret string, ttl time.Duration) (interfaces.SessionTokenService, error) {
	if len(secret) < 32 {
		return nil, errors.New("session token secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("session token ttl must be positive")
	}
	return &hmacSessionTokenService{secret: []byte(secret), ttl: ttl}, nil
}

func (s *hmacSessionTokenService) Issue(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *hmacSessionTokenService) Parse(raw string) (uuid.UUID, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid session token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject in session token: %w", err)
	}
	return userID, nil
}

var _ interfaces.SessionTokenService = (*hmacSessionTokenService)(nil)
