// Package keystore persists signing keypairs so the rotation pool survives
// restarts. This is the durable half of key rotation; the in-memory KeyPool
// is rebuilt from it on startup.
package keystore

import (
	"context"
	"errors"

	"github.com/parenthub/authcore/internal/idp/domain"
)

var ErrNotFound = errors.New("keystore: not found")

// Keystore is the persistence collaborator for signing keypairs.
type Keystore interface {
	// InsertKeypair stores a new keypair with encrypted private material.
	InsertKeypair(ctx context.Context, key domain.SigningKeypair) error

	// SelectActiveKeypairs returns all non-retired, non-expired keypairs,
	// newest first.
	SelectActiveKeypairs(ctx context.Context) ([]domain.SigningKeypair, error)

	// SelectAllKeypairs returns every keypair including retired ones still
	// inside their grace window, newest first. Used to rebuild the
	// verification KeySet.
	SelectAllKeypairs(ctx context.Context) ([]domain.SigningKeypair, error)

	// GetKeypairByKid fetches one keypair, or ErrNotFound.
	GetKeypairByKid(ctx context.Context, kid string) (domain.SigningKeypair, error)

	// RetireKeypair stamps retired_at; the keypair stops signing but stays
	// selectable for verification until it expires.
	RetireKeypair(ctx context.Context, kid string) error

	// DeleteExpired removes keypairs past their expires_at. Housekeeping.
	// Returns the number of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}
