package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/schoolhub/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Manager issues and validates stateless access tokens. It is safe for
// concurrent use; nothing in it changes after construction.
type Manager struct {
	secret    []byte
	method    jwt.SigningMethod
	accessTTL time.Duration
}

func NewManager(secret, algorithm string, accessTTL time.Duration) (*Manager, error) {
	if secret == "" || algorithm == "" {
		return nil, fmt.Errorf("%w: token secret and algorithm are required", config.ErrConfigurationMissing)
	}

	method := jwt.GetSigningMethod(strings.ToUpper(strings.TrimSpace(algorithm)))

	// the key is a shared secret, so only HMAC methods make sense
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}

	return &Manager{
		secret:    []byte(secret),
		method:    method,
		accessTTL: accessTTL,
	}, nil
}

func NewManagerFromConfig(cfg config.Config) (*Manager, error) {
	return NewManager(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL())
}

// Issue signs a token for subject that expires ttl from now. A negative ttl
// yields an already expired token.
func (m *Manager) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

func (m *Manager) IssueAccessToken(subject string) (string, error) {
	return m.Issue(subject, m.accessTTL)
}

func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// Validate returns the token subject. Every failure (bad signature, other
// algorithm, expired, malformed, no subject) collapses into ErrInvalidCredentials.
func (m *Manager) Validate(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidCredentials
	}

	return claims.Subject, nil
}
