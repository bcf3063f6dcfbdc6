package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims are the access token claims: registered subject/expiry plus the
// uid and role labels the gateway propagates downstream.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string   `json:"uid,omitempty"`
	UserRoles []string `json:"roles,omitempty"`
}

// Subject returns the subject claim.
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the account id the token was issued for.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Roles returns the role labels carried by the token.
func (c *JWTClaims) Roles() []string {
	return c.UserRoles
}

// PrimaryRole is the single role label the gateway forwards downstream.
func (c *JWTClaims) PrimaryRole() string {
	if len(c.UserRoles) == 0 {
		return ""
	}
	return c.UserRoles[0]
}

// HasRole checks if the token carries a specific role label.
func (c *JWTClaims) HasRole(role string) bool {
	for _, r := range c.UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Expires returns the expiration time.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time.
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
