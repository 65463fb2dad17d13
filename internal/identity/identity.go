// Package identity normalizes verified OIDC claims into the fields the
// tenant directory keys on.
package identity

import (
	"errors"
	"strings"
)

// ErrMissingEmail is returned when the claim set has no usable email.
// Resolution cannot proceed without a tenant key.
var ErrMissingEmail = errors.New("identity: claims contain no email")

// Claims is the subset of ID token claims this service consumes.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone_number"`
}

// Identity is a normalized identity. Email is the tenant key; Name and
// Phone are display attributes with fallbacks applied.
type Identity struct {
	Email string
	Name  string
	Phone string
}

// Normalize validates and normalizes a claim set. The email claim is
// required and is lowercased to keep the tenant key stable across
// providers. A missing display name falls back to the local part of the
// email; a missing phone falls back to empty.
func Normalize(claims Claims) (Identity, error) {
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" || !strings.Contains(email, "@") {
		return Identity{}, ErrMissingEmail
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	return Identity{
		Email: email,
		Name:  name,
		Phone: strings.TrimSpace(claims.Phone),
	}, nil
}
