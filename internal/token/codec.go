// Package token creates and verifies the compact signed tokens that carry a
// caller's identity claim between requests.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject is stamped into every token this service issues.
const Subject = "web-auth-system"

// minSecretLen guards against HS256 keys shorter than the hash width.
const minSecretLen = 32

// ErrInvalidToken is returned by [Codec.Verify] for any token that cannot be
// trusted: malformed input, signature mismatch, or past expiry. Callers are
// not told which.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload signed into a token. UserID is mandatory; ExpiresAt
// is absent for non-expiring tokens.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Config holds the signing parameters for a [Codec].
type Config struct {
	Secret []byte
	Now    func() time.Time
}

// Codec signs and verifies tokens with HMAC-SHA256 over a fixed shared
// secret. All methods are pure functions of their input and the secret:
// no I/O, safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec validates the signing configuration. A short secret is the one
// irrecoverable misconfiguration; token creation itself does not fail.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("token secret must be at least %d bytes", minSecretLen)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Codec{secret: cfg.Secret, now: cfg.Now}, nil
}

// Create signs a token for userID. A positive ttl sets the expiry to
// now+ttl; ttl <= 0 omits the expiry entirely. issuedAt and the service
// subject are always stamped.
func (c *Codec) Create(userID string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  Subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token string. Every failure mode collapses
// into [ErrInvalidToken]; a token is either fully trusted or rejected.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(Subject),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
