package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const flashIssuer = "passforge"

var ErrInvalidFlash = errors.New("invalid or expired flash token")

// FlashMessage is a one-shot message shown on the next page render.
type FlashMessage struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// FlashClaims carries pending flash messages inside a signed cookie value.
type FlashClaims struct {
	jwt.RegisteredClaims
	Messages []FlashMessage `json:"messages"`
}

// SignFlash encodes messages into an HS256 token that expires after ttl.
func SignFlash(messages []FlashMessage, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := FlashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    flashIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Messages: messages,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseFlash validates a flash token and returns its messages.
func ParseFlash(tokenString string, secret []byte) ([]FlashMessage, error) {
	token, err := jwt.ParseWithClaims(tokenString, &FlashClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidFlash
		}
		return secret, nil
	}, jwt.WithIssuer(flashIssuer))
	if err != nil {
		return nil, ErrInvalidFlash
	}

	claims, ok := token.Claims.(*FlashClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidFlash
	}

	return claims.Messages, nil
}
