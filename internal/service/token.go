package service

import (
	"errors"
	"time"

	"github.com/curasense/auth-service/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the self-contained identity assertion carried by an access
// token. It is never persisted; validity comes from the signature and expiry
// alone.
type AccessClaims struct {
	UserID    uint           `json:"user_id"`
	Email     string         `json:"email"`
	Role      model.UserRole `json:"role"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies short-lived access tokens with a
// process-wide HMAC secret loaded once at startup. Rotating the secret
// invalidates every outstanding token.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured access token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs an access token for the user with the configured TTL.
func (s *TokenService) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry and returns the claims, or nil for
// any failure. Malformed, tampered, and expired tokens are indistinguishable
// to the caller: all of them mean "not authenticated". Nothing is thrown
// past this boundary.
func (s *TokenService) Verify(tokenString string) *AccessClaims {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}
