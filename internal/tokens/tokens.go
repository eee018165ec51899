package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/profilekit/profilekit/internal/models"
)

var (
	// ErrExpired is returned when the token signature is valid but the
	// embedded expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalidToken covers malformed payloads, bad signatures and
	// unexpected signing methods.
	ErrInvalidToken = errors.New("invalid token")
)

// Default TTLs: password logins get long-lived tokens, OAuth-callback
// tokens are short-lived.
const (
	LoginTTL = 14 * 24 * time.Hour
	OAuthTTL = time.Hour
)

// Claims is the signed payload carried by a bearer token. Subject is
// the user id (ObjectID hex). Verification never consults the store:
// IsAdmin reflects the user at issuance time.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Service signs and verifies bearer tokens with a process-wide HS256
// secret loaded once at startup.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue creates a signed token for the user with the given TTL.
func (s *Service) Issue(u *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssueClaims signs an arbitrary claims payload. Used by the OAuth
// callback where no local user record backs the token.
func (s *Service) IssueClaims(c *Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
// It is a pure function of the token and the secret; it does not check
// that the subject still exists.
func (s *Service) Verify(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}
