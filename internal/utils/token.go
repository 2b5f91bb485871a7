package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Shivesh4/MindPath/internal/apperrors"
)

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
)

// AccessClaims is the verified identity carried by an access token.
type AccessClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an access token for the given identity.
func GenerateAccessToken(userID uuid.UUID, role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken verifies a token and returns its claims.
//
// This is the only credential verification path in the service. Both the
// HTTP auth middleware and the websocket handshake go through it, so the
// two surfaces can never disagree about what counts as a valid token.
func ParseAccessToken(tokenString, secret string) (*AccessClaims, error) {
	if tokenString == "" {
		return nil, apperrors.NewAuth("token missing")
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewAuth("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewAuth("invalid or expired token")
	}

	if claims.UserID == uuid.Nil {
		return nil, apperrors.NewAuth("token missing user id")
	}
	if claims.Role != RoleStudent && claims.Role != RoleTutor {
		return nil, apperrors.NewAuth("token carries unknown role")
	}

	return claims, nil
}
