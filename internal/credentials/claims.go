package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what can be read from a token without verifying it.
type Claims struct {
	Subject   string
	Username  string
	Role      string
	ExpiresAt time.Time
	JWT       bool
}

// ParseClaims decodes a JWT's payload without checking its signature; the
// catalog is the authority on validity. Opaque tokens return Claims{JWT: false}.
func ParseClaims(token string) Claims {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}
	}

	c := Claims{JWT: true}
	c.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	for _, key := range []string{"username", "user", "name"} {
		if v, ok := mc[key].(string); ok && v != "" {
			c.Username = v
			break
		}
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	return c
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
