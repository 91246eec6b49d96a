// Package identity implements the identity collaborator: HS256 tokens for
// accounts, and providers that resolve the acting account for a store session.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. The subject is the account id.
type Claims struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWT signs and verifies account tokens with a shared secret.
type JWT struct {
	secret []byte
	now    func() time.Time
}

var _ ports.TokenIssuer = (*JWT)(nil)

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

func (j *JWT) Issue(a domain.Account, ttl time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		Role:  string(a.Role),
		Name:  a.Name,
		Email: a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns the account it names. Tokens with an
// unknown role or no subject are rejected.
func (j *JWT) Parse(raw string) (domain.Account, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !tkn.Valid {
		return domain.Guest, ErrInvalidToken
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok || role == domain.RoleGuest || claims.Subject == "" {
		return domain.Guest, ErrInvalidToken
	}
	return domain.Account{
		ID:    claims.Subject,
		Role:  role,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
