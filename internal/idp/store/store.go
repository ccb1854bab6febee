package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the credential store: short-lived records of named fields, each
// record carrying its own TTL. Everything above this interface is driver
// agnostic; the redis driver is the only concrete implementation.
//
// Atomicity contract: Create is create-if-absent applied as one unit,
// Consume is get-and-delete applied as one unit, and a Record commit applies
// all its field writes plus the TTL as one unit. Single-use ticket semantics
// lean on these three, not on caller-side sequencing.
type Store interface {
	// Create writes a new record with the given fields and TTL. If a record
	// already exists under key, nothing is written and ErrAlreadyExists is
	// returned.
	Create(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error

	// Get returns one field of a record. ErrNotFound reports explicit
	// absence of the record or the field.
	Get(ctx context.Context, key, field string) (string, error)

	// GetAll returns every field of a record, or ErrNotFound.
	GetAll(ctx context.Context, key string) (map[string]string, error)

	// SetField overwrites one field of an existing record, preserving the
	// record's TTL. ErrNotFound if the record is absent: a field write must
	// never resurrect a record without an expiry.
	SetField(ctx context.Context, key, field, value string) error

	// Delete removes a record. ErrNotFound if it was already absent, so
	// callers can tell a real deletion from a no-op.
	Delete(ctx context.Context, key string) error

	// Consume atomically reads all fields of a record and deletes it.
	// ErrNotFound if absent. This is the single-use primitive: two
	// concurrent consumers of one key cannot both succeed.
	Consume(ctx context.Context, key string) (map[string]string, error)

	// Record starts a builder that commits several field writes plus the
	// record TTL as one unit.
	Record(key string) RecordBuilder

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying client.
	Close() error
}

// RecordBuilder accumulates field writes for a single record. Commit applies
// them together with the TTL; nothing touches the store before Commit.
type RecordBuilder interface {
	Set(field, value string) RecordBuilder
	Commit(ctx context.Context, ttl time.Duration) error
}
