// Package token issues and validates stateless session tokens (HS256 JWTs).
// Validity is a function of signature and expiry only; there is no
// revocation list, re-login is the only renewal path.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zachmicha/inno-shop/internal/config"
)

// Claims carries the registered claims plus the user's email.
// The subject claim holds the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Issuer signs and validates session tokens using settings fixed at startup.
type Issuer struct {
	issuer   string
	audience string
	key      []byte
	validity time.Duration
}

// NewIssuer builds an Issuer from the JWT configuration.
func NewIssuer(cfg config.JWT) *Issuer {
	return &Issuer{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		key:      []byte(cfg.Key),
		validity: time.Duration(cfg.ExpiryMinutes) * time.Minute,
	}
}

// Issue signs a token asserting the given user id and email, expiring after
// the configured validity.
func (i *Issuer) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token string and verifies signature, expiry, issuer and
// audience. It returns the embedded claims on success.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
