package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the ID-token claims issued by this service. Registered claims
// carry the issuer/subject/audience/expiry contract; everything else is
// profile data filtered by the granted scopes.
type Claims struct {
	jwt.RegisteredClaims

	// Name is the member's display name ("name" scope).
	Name string `json:"name,omitempty"`

	// Email is the member's contact email ("email" scope).
	Email string `json:"email,omitempty"`

	// PhoneNumbers are the member's contact numbers ("phone" scope).
	PhoneNumbers []string `json:"phone_numbers,omitempty"`

	// Children are identifiers of child profiles linked to the member
	// detail this session was opened for ("child" scope).
	Children []string `json:"children,omitempty"`
}

// ProfileClaims carries the scope-filtered profile fields for an ID token.
type ProfileClaims struct {
	Name         string
	Email        string
	PhoneNumbers []string
	Children     []string
}

// NewIDClaims builds minimally-correct ID-token claims.
func NewIDClaims(
	subject string,
	profile ProfileClaims,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Name:         profile.Name,
		Email:        profile.Email,
		PhoneNumbers: profile.PhoneNumbers,
		Children:     profile.Children,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
