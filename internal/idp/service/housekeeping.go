package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/parenthub/authcore/internal/idp/keystore"
	"github.com/parenthub/authcore/pkg/jwtx"
)

// HousekeepingService periodically removes signing keypairs whose grace
// window has lapsed, from the keystore and from the verification KeySet.
// Passports, codes, and sessions need no sweeping; the store expires them
// on its own.
type HousekeepingService struct {
	Keystore keystore.Keystore
	Pool     *jwtx.KeyPool
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. An interval of 0 or
// below defaults to 1 hour.
func NewHousekeepingService(ks keystore.Keystore, pool *jwtx.KeyPool, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Keystore: ks,
		Pool:     pool,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut it
// down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// First sweep right away so a long interval doesn't delay startup
	// cleanup.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep drops expired keypairs from the verification KeySet first, then
// deletes them from the keystore. Doing it in that order means a keypair is
// never deleted while still verifiable.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	keys, err := s.Keystore.SelectAllKeypairs(ctx)
	if err != nil {
		s.Logger.Error("housekeeping: list keypairs failed", "err", err)
		return
	}
	for _, keypair := range keys {
		if keypair.IsExpired(now) {
			s.Pool.Drop(keypair.Kid)
		}
	}

	deleted, err := s.Keystore.DeleteExpired(ctx)
	if err != nil {
		s.Logger.Error("housekeeping: delete expired keypairs failed", "err", err)
		return
	}
	if deleted > 0 {
		s.Logger.Info("housekeeping: expired keypairs removed", "count", deleted)
	}
}
