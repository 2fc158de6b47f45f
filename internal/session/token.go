// Package session keeps one Window per visitor. A window owns the timer
// scheduler and the mounted demo page, so timers a wrong example leaks live
// exactly as long as the visitor's session.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidToken is returned for cookies that fail verification.
var ErrInvalidToken = errors.New("session: invalid token")

const hkdfInfo = "effectlab session cookie v1"

// Claims is the payload of the session cookie.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Signer issues and verifies session cookies.
type Signer struct {
	key []byte
	ttl time.Duration
}

// NewSigner derives the HS256 key from secret with HKDF-SHA256. An empty
// secret uses random bytes, so cookies do not survive a restart.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	ikm := []byte(secret)
	if secret == "" {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, fmt.Errorf("session: random key: %w", err)
		}
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("session: deriving key: %w", err)
	}
	return &Signer{key: key, ttl: ttl}, nil
}

// Issue creates a signed token for sid.
func (s *Signer) Issue(sid string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "effectlab",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse validates a token and returns its session id.
func (s *Signer) Parse(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithIssuer("effectlab"))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.SessionID, nil
}
