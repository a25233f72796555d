// Package auth issues and verifies the signed bearer tokens handed out at
// login, and resolves the caller's identity from them.
package auth

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimSubject   = "sub"
	ClaimExpiresAt = "exp"
)

// TokenConfig is the immutable signing configuration, built once at startup.
type TokenConfig struct {
	Secret     []byte
	Algorithm  string
	DefaultTTL time.Duration
}

// Claims is the decoded payload of a token.
type Claims map[string]any

// Subject returns the "sub" claim when it is a non-empty string.
func (c Claims) Subject() (string, bool) {
	sub, ok := c[ClaimSubject].(string)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}

// ExpiresAt returns the "exp" claim of a decoded token.
func (c Claims) ExpiresAt() (time.Time, bool) {
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenVerifier is what the identity resolver needs from a TokenManager.
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// TokenManager signs and verifies stateless HMAC JWTs. It holds no mutable
// state and is safe for concurrent use.
type TokenManager struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

type TokenOption func(*TokenManager)

// WithClock overrides time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewTokenManager(cfg TokenConfig, opts ...TokenOption) (*TokenManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token manager: empty secret")
	}
	if cfg.DefaultTTL <= 0 {
		return nil, fmt.Errorf("token manager: default ttl must be positive, got %s", cfg.DefaultTTL)
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token manager: unsupported algorithm %q", cfg.Algorithm)
	}

	m := &TokenManager{
		secret:     append([]byte(nil), cfg.Secret...),
		method:     method,
		defaultTTL: cfg.DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *TokenManager) DefaultTTL() time.Duration {
	return m.defaultTTL
}

// Issue signs claims with an "exp" of now+ttl. A zero ttl selects the
// configured default; a negative ttl produces an already expired token.
// The caller's map is not modified.
func (m *TokenManager) Issue(claims Claims, ttl time.Duration) (string, error) {
	if len(claims) == 0 {
		return "", fmt.Errorf("%w: token claims cannot be empty", common.ErrInvalidInput)
	}
	if ttl == 0 {
		ttl = m.defaultTTL
	}

	payload := make(jwt.MapClaims, len(claims)+1)
	maps.Copy(payload, claims)
	payload[ClaimExpiresAt] = jwt.NewNumericDate(m.now().Add(ttl))

	signed, err := jwt.NewWithClaims(m.method, payload).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, the algorithm and the expiry of token and
// returns its claims. Every failure matches common.ErrInvalidToken.
func (m *TokenManager) Verify(token string) (Claims, error) {
	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, common.ErrInvalidToken
	}
	return Claims(claims), nil
}
