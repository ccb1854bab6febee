package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/keystore"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/idx"
	"github.com/parenthub/authcore/pkg/jwtx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// KeyRotationService manages signing keypairs at runtime: generating fresh
// ones, retiring old ones, and rebuilding the in-memory KeyPool from the
// keystore after a restart. Private material only ever touches the keystore
// encrypted.
type KeyRotationService struct {
	Keystore  keystore.Keystore
	Pool      *jwtx.KeyPool
	Algorithm string

	// GracePeriod is how long a retired keypair keeps verifying tokens it
	// already signed before housekeeping deletes it.
	GracePeriod time.Duration
}

// RotateKeyRequest asks for a new signing keypair. With RetireExisting the
// current active keypairs stop signing at the same time; otherwise the new
// keypair joins them.
type RotateKeyRequest struct {
	RetireExisting bool `json:"retire_existing"`
}

// RotateKeyResponse reports the outcome of a rotation.
type RotateKeyResponse struct {
	NewKid      string   `json:"new_kid"`
	Algorithm   string   `json:"algorithm"`
	RetiredKids []string `json:"retired_kids,omitempty"`
	ActiveKeys  int      `json:"active_keys"`
}

func (s *KeyRotationService) gracePeriod() time.Duration {
	if s.GracePeriod > 0 {
		return s.GracePeriod
	}
	return 30 * 24 * time.Hour
}

// RotateKey generates a keypair, persists it encrypted, and activates it in
// the pool. Persistence happens before activation so a keypair the pool
// signs with is always recoverable after a restart.
func (s *KeyRotationService) RotateKey(ctx context.Context, req RotateKeyRequest) (*RotateKeyResponse, error) {
	log := slogx.FromContext(ctx)

	signer, pemBytes, err := jwtx.GenerateSigner(s.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("rotate key: %w", err)
	}

	encrypted, err := cryptox.EncryptPrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("rotate key: encrypt private key: %w", err)
	}

	now := time.Now().UTC()
	keypair := domain.SigningKeypair{
		ID:                  idx.New().String(),
		Kid:                 signer.KID(),
		Algorithm:           s.Algorithm,
		PrivateKeyEncrypted: encrypted,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.gracePeriod()),
	}
	if err := s.Keystore.InsertKeypair(ctx, keypair); err != nil {
		return nil, fmt.Errorf("rotate key: persist keypair: %w", err)
	}

	var retiredKids []string
	if req.RetireExisting {
		active, err := s.Keystore.SelectActiveKeypairs(ctx)
		if err != nil {
			return nil, fmt.Errorf("rotate key: list active keypairs: %w", err)
		}
		for _, existing := range active {
			if existing.Kid == keypair.Kid {
				continue
			}
			if err := s.Keystore.RetireKeypair(ctx, existing.Kid); err != nil {
				return nil, fmt.Errorf("rotate key: retire %s: %w", existing.Kid, err)
			}
			if err := s.Pool.Retire(existing.Kid); err != nil && !errors.Is(err, jwtx.ErrKeyNotFound) {
				return nil, fmt.Errorf("rotate key: retire %s in pool: %w", existing.Kid, err)
			}
			retiredKids = append(retiredKids, existing.Kid)
		}
	}

	if err := s.Pool.Activate(signer); err != nil {
		return nil, fmt.Errorf("rotate key: activate signer: %w", err)
	}

	log.Info("signing key rotated",
		"kid", keypair.Kid,
		"algorithm", s.Algorithm,
		"retired", len(retiredKids),
		"active_keys", s.Pool.Len(),
	)

	return &RotateKeyResponse{
		NewKid:      keypair.Kid,
		Algorithm:   s.Algorithm,
		RetiredKids: retiredKids,
		ActiveKeys:  s.Pool.Len(),
	}, nil
}

// RetireKey retires one keypair without minting a replacement. The keypair
// keeps verifying until its grace window lapses. Retiring the last active
// keypair is allowed; issuance then fails until the next rotation.
func (s *KeyRotationService) RetireKey(ctx context.Context, kid string) error {
	keypair, err := s.Keystore.GetKeypairByKid(ctx, kid)
	if errors.Is(err, keystore.ErrNotFound) {
		return fmt.Errorf("retire key: %w: %s", keystore.ErrNotFound, kid)
	}
	if err != nil {
		return fmt.Errorf("retire key: %w", err)
	}
	if keypair.RetiredAt != nil {
		return fmt.Errorf("retire key: %s is already retired", kid)
	}

	if err := s.Keystore.RetireKeypair(ctx, kid); err != nil {
		return fmt.Errorf("retire key: %w", err)
	}
	if err := s.Pool.Retire(kid); err != nil && !errors.Is(err, jwtx.ErrKeyNotFound) {
		return fmt.Errorf("retire key: pool: %w", err)
	}

	slogx.FromContext(ctx).Info("signing key retired", "kid", kid, "active_keys", s.Pool.Len())
	return nil
}

// ListKeypairs returns every persisted keypair, retired ones included.
func (s *KeyRotationService) ListKeypairs(ctx context.Context) ([]domain.SigningKeypair, error) {
	keys, err := s.Keystore.SelectAllKeypairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keypairs: %w", err)
	}
	return keys, nil
}

// LoadFromKeystore rebuilds the pool from persisted keypairs after a
// restart. Active keypairs go back on signing duty; retired ones inside
// their grace window rejoin the verification KeySet only.
func (s *KeyRotationService) LoadFromKeystore(ctx context.Context) error {
	log := slogx.FromContext(ctx)

	keys, err := s.Keystore.SelectAllKeypairs(ctx)
	if err != nil {
		return fmt.Errorf("load keystore: %w", err)
	}

	now := time.Now().UTC()
	loaded := 0
	for _, keypair := range keys {
		if keypair.IsExpired(now) {
			continue
		}

		pemBytes, err := cryptox.DecryptPrivateKey(keypair.PrivateKeyEncrypted)
		if err != nil {
			return fmt.Errorf("load keystore: decrypt %s: %w", keypair.Kid, err)
		}
		signer, err := jwtx.NewSignerForAlg(keypair.Algorithm, keypair.Kid, pemBytes)
		if err != nil {
			return fmt.Errorf("load keystore: rebuild %s: %w", keypair.Kid, err)
		}

		if keypair.IsActive(now) {
			if err := s.Pool.Activate(signer); err != nil {
				return fmt.Errorf("load keystore: activate %s: %w", keypair.Kid, err)
			}
		} else {
			if err := s.Pool.KeySet().AddSigner(signer); err != nil {
				return fmt.Errorf("load keystore: publish %s: %w", keypair.Kid, err)
			}
		}
		loaded++
	}

	log.Info("signing keys loaded from keystore",
		"loaded", loaded,
		"active", s.Pool.Len(),
	)
	return nil
}
