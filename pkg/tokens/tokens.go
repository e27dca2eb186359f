package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var ErrUnexpectedSigningMethod = errors.New("unexpected sign method")

type AccessClaims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IssueAccessToken signs an HS256 access token for the user.
func IssueAccessToken(secret []byte, userID, username, role string, verified bool, exp time.Time) (string, error) {
	claims := AccessClaims{
		Role:     role,
		Username: username,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnexpectedSigningMethod
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}

// ExpiresAt reads the exp claim without verifying the signature. Clients use
// it to drop a session whose token has already expired before sending it.
func ExpiresAt(tokenStr string) (time.Time, bool) {
	var claims AccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the token carries an exp claim in the past.
// Tokens without a readable exp are treated as live and left to the server.
func Expired(tokenStr string, now time.Time) bool {
	exp, ok := ExpiresAt(tokenStr)
	return ok && !now.Before(exp)
}
