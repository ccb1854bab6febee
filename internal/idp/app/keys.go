package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/pkg/cryptox"
)

// InitSigningKeys rebuilds the rotation pool from the keystore and, on a
// fresh install, rotates the first keypair into existence. Tokens survive
// restarts because the private material is persisted encrypted.
func InitSigningKeys(ctx context.Context, cfg Config, rotation *service.KeyRotationService, logger *slog.Logger) error {
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
		logger.Info("master key path configured", "path", cfg.MasterKeyPath)
	} else {
		logger.Warn("no master key path configured; persisted keypairs will not survive a restart")
	}

	if err := rotation.LoadFromKeystore(ctx); err != nil {
		return fmt.Errorf("failed to load signing keys: %w", err)
	}

	if rotation.Pool.Len() == 0 {
		logger.Info("no active signing keys found, generating first keypair",
			"algorithm", cfg.Algorithm,
		)
		resp, err := rotation.RotateKey(ctx, service.RotateKeyRequest{})
		if err != nil {
			return fmt.Errorf("failed to generate initial signing key: %w", err)
		}
		logger.Info("initial signing key generated", "kid", resp.NewKid)
	}

	logger.Info("signing keys ready",
		"algorithm", cfg.Algorithm,
		"active_keys", rotation.Pool.Len(),
		"grace_period", cfg.KeyGracePeriod,
	)
	return nil
}
