package auth

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// stateTokenTTL bounds how long a login attempt may sit between the
// redirect to the provider and the callback.
const stateTokenTTL = 10 * time.Minute

// StateClaims is the payload of the signed login-state cookie.
type StateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// GenerateNonce returns a random alphanumeric string of the given length
// (minimum 16) for CSRF protection of the OAuth callback.
func GenerateNonce(length int) (string, error) {
	if length < 16 {
		length = 16
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}
	for i, b := range buf {
		buf[i] = stateAlphabet[int(b)%len(stateAlphabet)]
	}
	return string(buf), nil
}

// GenerateStateToken signs the nonce into a short-lived cookie value so the
// callback can verify the cookie was minted by this server.
func GenerateStateToken(secret, nonce string) (string, error) {
	claims := StateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign state token: %w", err)
	}
	return signed, nil
}

// ParseStateToken validates the cookie value and returns the embedded nonce.
func ParseStateToken(secret, tokenString string) (string, error) {
	claims := &StateClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse state token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid state token")
	}
	return claims.Nonce, nil
}
