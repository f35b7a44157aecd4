// Package token signs and verifies the bearer tokens that identify callers.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

type claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}

	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue returns a signed HS256 token carrying sub, role, iat and exp.
func (i *Issuer) Issue(subjectID string, role models.Role) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and payload shape. Every failure is ErrUnauthenticated.
func (i *Issuer) Verify(tokenString string) (models.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return models.Identity{}, apperr.Unauthenticated("token expired")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return models.Identity{}, apperr.Unauthenticated("malformed token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return models.Identity{}, apperr.Unauthenticated("invalid token signature")
		default:
			return models.Identity{}, apperr.Unauthenticated("invalid token")
		}
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" || !c.Role.Valid() {
		return models.Identity{}, apperr.Unauthenticated("malformed token payload")
	}

	return models.Identity{SubjectID: c.Subject, Role: c.Role}, nil
}
