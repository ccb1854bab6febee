package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/parenthub/authcore/pkg/cryptox"
)

var (
	// ErrNoActiveKey means the pool has no activated signer left. Token
	// issuance cannot proceed without one; verification of already-issued
	// tokens still works through the KeySet.
	ErrNoActiveKey = errors.New("jwtx: no active signing key")

	// ErrKeyNotFound means no activated signer carries the requested kid.
	ErrKeyNotFound = errors.New("jwtx: signing key not found")
)

// KeyPool manages the signing side of key rotation. It holds the set of
// activated signers plus a KeySet of every public key that may have signed
// a still-valid token. Retiring a key removes it from signing duty but keeps
// its public half verifiable until the grace window closes.
type KeyPool struct {
	mu      sync.RWMutex
	signers []Signer
	keyset  *KeySet
}

// NewKeyPool returns an empty pool backed by the given KeySet.
// Pass a fresh KeySet if verification state isn't shared with anything else.
func NewKeyPool(keyset *KeySet) *KeyPool {
	if keyset == nil {
		keyset = NewKeySet()
	}
	return &KeyPool{keyset: keyset}
}

// SelectSigner returns a uniformly random activated signer. Random selection
// spreads issuance across the pool so no single key signs everything.
func (p *KeyPool) SelectSigner() (Signer, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch len(p.signers) {
	case 0:
		return nil, ErrNoActiveKey
	case 1:
		return p.signers[0], nil
	default:
		return p.signers[rand.IntN(len(p.signers))], nil
	}
}

// Activate adds a signer to the pool and publishes its public key for
// verification. Safe to call at runtime for rotation.
func (p *KeyPool) Activate(signer Signer) error {
	if signer == nil {
		return errors.New("jwtx: signer cannot be nil")
	}
	if err := signer.Validate(); err != nil {
		return fmt.Errorf("jwtx: invalid signer: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.keyset.AddSigner(signer); err != nil {
		return fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}
	p.signers = append(p.signers, signer)
	return nil
}

// Retire removes a signer from signing duty. Its public key stays in the
// KeySet so tokens it already signed keep verifying. Retiring the last
// signer is allowed; issuance then fails with ErrNoActiveKey until a new
// key is activated.
func (p *KeyPool) Retire(kid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	remaining := make([]Signer, 0, len(p.signers))
	found := false
	for _, s := range p.signers {
		if s.KID() == kid {
			found = true
			continue
		}
		remaining = append(remaining, s)
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}

	p.signers = remaining
	return nil
}

// Drop removes a key from verification entirely. Only call this once the
// grace window for the key has lapsed.
func (p *KeyPool) Drop(kid string) {
	p.keyset.Remove(kid)
}

// VerificationKeys returns the JWKS of every key that may have signed a
// still-valid token, activated and retired alike.
func (p *KeyPool) VerificationKeys() JWKS {
	return p.keyset.PublicJWKS()
}

// KeySet exposes the underlying verification KeySet for wiring a Verifier.
func (p *KeyPool) KeySet() *KeySet {
	return p.keyset
}

// Signers returns a copy of the activated signers, for listing key state.
func (p *KeyPool) Signers() []Signer {
	p.mu.RLock()
	defer p.mu.RUnlock()

	signers := make([]Signer, len(p.signers))
	copy(signers, p.signers)
	return signers
}

// Len returns the number of activated signers.
func (p *KeyPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.signers)
}

// IsReady reports whether verification is possible at all.
func (p *KeyPool) IsReady() bool {
	return p.keyset.IsReady()
}

// NewKeyID creates a random key identifier using cryptographic entropy.
// Format: "authcore-{random-token}" where random-token is a 128-bit secure token.
func NewKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to generate key ID: %w", err)
	}
	return fmt.Sprintf("authcore-%s", token), nil
}

// GenerateSigner creates a fresh signer of the given algorithm with a random
// key ID. The returned PEM is the private key material for persistence.
func GenerateSigner(algorithm string) (Signer, []byte, error) {
	kid, err := NewKeyID()
	if err != nil {
		return nil, nil, err
	}

	var pemBytes []byte
	switch algorithm {
	case AlgorithmEdDSA:
		pemBytes, err = cryptox.GenerateEd25519Key()
	case AlgorithmRS256:
		pemBytes, err = cryptox.GenerateRSAKey(2048)
	default:
		return nil, nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: EdDSA, RS256)", algorithm)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: failed to generate %s key: %w", algorithm, err)
	}

	signer, err := NewSignerForAlg(algorithm, kid, pemBytes)
	if err != nil {
		return nil, nil, err
	}
	return signer, pemBytes, nil
}

// NewSignerForAlg constructs a signer for the given algorithm from PEM bytes.
func NewSignerForAlg(algorithm, kid string, pemBytes []byte) (Signer, error) {
	switch algorithm {
	case AlgorithmEdDSA:
		return NewSignerEdDSA(kid, pemBytes)
	case AlgorithmRS256:
		return NewSignerRS256(kid, pemBytes)
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: EdDSA, RS256)", algorithm)
	}
}
