// Package token issues and verifies the signed session tokens that gate
// the dashboard read endpoints. Verification is a pure computation over
// the signature and expiry; no store round trip is involved.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a session token stays valid after issuance.
// There is no early revocation.
const DefaultTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims binds a session token to an identity. The json field names match
// what the dashboard frontend decodes.
type Claims struct {
	UserID    int64  `json:"userId"`
	RegNumber string `json:"regNumber"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens with a server-held
// secret. Safe for concurrent use.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: secret, ttl: ttl, now: time.Now}
}

func (s *Signer) Issue(userID int64, regNumber string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		RegNumber: regNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry. Expiry maps to ErrExpiredToken;
// every other failure collapses to ErrInvalidToken so callers cannot
// distinguish why a bad token was rejected.
func (s *Signer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}
