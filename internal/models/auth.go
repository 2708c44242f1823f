package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the payload of identity-provider access tokens. The
// registered subject carries the durable user identifier.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *TokenClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
