package domain

import "time"

// SigningKeypair is a token-signing keypair persisted by the keystore with
// support for rotation. Private material is encrypted at rest; a retired
// keypair stays verifiable until its grace window lapses.
type SigningKeypair struct {
	ID                  string     // ULID
	Kid                 string     // Key identifier in JWKS (e.g., "authcore-abc123")
	Algorithm           string     // EdDSA or RS256
	PrivateKeyEncrypted []byte     // AES-256-GCM encrypted private key PEM
	CreatedAt           time.Time  // When the keypair was created
	RetiredAt           *time.Time // When retired from active signing (nil = active)
	ExpiresAt           time.Time  // Hard deletion after this (for cleanup)
}

// IsActive returns true if the keypair is not retired and not expired.
func (k *SigningKeypair) IsActive(now time.Time) bool {
	return k.RetiredAt == nil && now.Before(k.ExpiresAt)
}

// IsExpired returns true if the keypair has passed its expiration time.
func (k *SigningKeypair) IsExpired(now time.Time) bool {
	return now.After(k.ExpiresAt)
}
