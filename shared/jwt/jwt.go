package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie the backend sets on login.
const CookieName = "jwt"

var ErrNoExpiry = errors.New("token has no exp claim")

// Claims is what the client can read from its own session token.
type Claims struct {
	Subject   string
	UserId    int64 // 0 when the token carries no numeric id claim
	Roles     []string
	ExpiresAt time.Time
}

// Inspect reads the claims of a session token without verifying its
// signature. The client never holds the signing key; the result is only
// used to predict expiry, never to grant access.
func Inspect(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("cannot parse session token: %w", err)
	}

	out := Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	out.UserId = userId(claims)
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return out, fmt.Errorf("cannot read exp claim: %w", err)
	}
	if exp == nil {
		return out, ErrNoExpiry
	}
	out.ExpiresAt = exp.Time
	return out, nil
}

func userId(claims jwt.MapClaims) int64 {
	for _, key := range []string{"userId", "id"} {
		switch v := claims[key].(type) {
		case float64:
			return int64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

// Expired reports whether the claims expired at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
