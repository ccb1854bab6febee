package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/pkg/cryptox"
)

// Memory is an in-memory Directory for development and tests. Passwords are
// argon2id-hashed on registration so the verification path exercises exactly
// what a database-backed directory would.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]memberEntry
}

type memberEntry struct {
	passwordHash string
	identity     domain.Identity
	profile      domain.Profile
}

var _ Directory = (*Memory)(nil)

// NewMemory returns an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{byEmail: make(map[string]memberEntry)}
}

// Register adds a member. Intended for dev seeding and tests.
func (m *Memory) Register(email, password string, identity domain.Identity, profile domain.Profile) error {
	if identity.IsZero() {
		return fmt.Errorf("directory: register %q: incomplete identity", email)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("directory: register %q: %w", email, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[email] = memberEntry{
		passwordHash: hash,
		identity:     identity,
		profile:      profile,
	}
	return nil
}

func (m *Memory) VerifyCredentials(_ context.Context, email, password string) (domain.Identity, error) {
	m.mu.RLock()
	entry, ok := m.byEmail[email]
	m.mu.RUnlock()

	if !ok {
		return domain.Identity{}, ErrNoMatch
	}
	if err := cryptox.VerifyPassword(password, entry.passwordHash); err != nil {
		return domain.Identity{}, ErrNoMatch
	}
	return entry.identity, nil
}

func (m *Memory) Profile(_ context.Context, identity domain.Identity) (domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, entry := range m.byEmail {
		if entry.identity == identity {
			return entry.profile, nil
		}
	}
	return domain.Profile{}, ErrNoMatch
}
