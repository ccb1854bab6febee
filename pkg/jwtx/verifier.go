package jwtx

import (
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// TokenVerifier validates JWTs against a KeySet. One verifier handles both
// EdDSA and RS256 tokens; the key resolved from the kid header decides which
// applies, and the parser rejects anything outside the allowed algorithms.
type TokenVerifier struct {
	keys   *KeySet
	issuer string
	aud    []string
	algs   []string
}

// NewVerifier creates a verifier for the given KeySet. The token must carry
// a kid header resolving to a key in the set, and its claims must match the
// issuer and audience expectations.
func NewVerifier(keys *KeySet, issuer string, aud []string) *TokenVerifier {
	return &TokenVerifier{
		keys:   keys,
		issuer: issuer,
		aud:    aud,
		algs:   []string{AlgorithmEdDSA, AlgorithmRS256},
	}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *TokenVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods(v.algs))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: unknown kid %q: %w", kid, err)
		}

		// The key type has to line up with the signing method, otherwise
		// a token could claim an algorithm its key was never meant for.
		switch t.Method.Alg() {
		case AlgorithmEdDSA:
			edPub, ok := pub.(ed25519.PublicKey)
			if !ok {
				return nil, ErrAlgMismatch
			}
			return edPub, nil
		case AlgorithmRS256:
			rsaPub, ok := pub.(*rsa.PublicKey)
			if !ok {
				return nil, ErrAlgMismatch
			}
			return rsaPub, nil
		default:
			return nil, ErrAlgMismatch
		}
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
