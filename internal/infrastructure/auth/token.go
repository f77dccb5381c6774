// Package auth resolves the caller identity from a bearer token. The token
// is the session collaborator's artifact; this package only verifies and
// extracts, the role authority stays with the user repository.
package auth

import (
	"errors"
	"fmt"

	"github.com/chronomart/storefront/internal/domain/identity"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("auth: invalid token")

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenParser verifies HS256 session tokens.
type TokenParser struct {
	secret []byte
	issuer string
}

func NewTokenParser(secret, issuer string) *TokenParser {
	return &TokenParser{secret: []byte(secret), issuer: issuer}
}

// Parse returns the authenticated session for a valid token. An empty token
// yields an anonymous session without error; a malformed or forged token is
// an error.
func (p *TokenParser) Parse(tokenString string) (identity.Session, error) {
	if tokenString == "" {
		return identity.Session{}, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return identity.Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return identity.Session{}, ErrInvalidToken
	}

	return identity.Session{
		Authenticated: true,
		UserID:        claims.Subject,
		Email:         claims.Email,
	}, nil
}

// Issue mints a session token. Used by tests and the dev login seam.
func (p *TokenParser) Issue(userID, email string) (string, error) {
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
			Issuer:  p.issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
