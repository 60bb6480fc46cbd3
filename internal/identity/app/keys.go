package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/pkg/cryptox"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
)

// InitAuthKeys creates the KeyManager for the configured algorithm and
// storage mode.
//
// Storage modes:
//   - "ephemeral": keys live in memory only. Every token issued before a
//     restart stops verifying.
//   - "persistent": keys are sealed with the master key and stored in the
//     signing_keys table, so tokens survive restarts until the key expires.
func InitAuthKeys(ctx context.Context, cfg Config, db store.Store, logger *slog.Logger) (*jwtx.KeyManager, error) {
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
		logger.Info("master key path configured", "path", cfg.MasterKeyPath)
	}

	var keyManager *jwtx.KeyManager
	var err error

	switch cfg.KeyStorageMode {
	case KeyModePersistent:
		logger.Info("initializing persistent key manager",
			"algorithm", cfg.Algorithm,
			"num_keys", cfg.NumKeys,
			"grace_period", cfg.KeyGracePeriod,
		)

		keyManager, err = jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
			Store:     store.NewKeyStoreAdapter(db),
			Algorithm: cfg.Algorithm,
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audience,
			NumKeys:   cfg.NumKeys,
			Lifetime:  cfg.KeyGracePeriod,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize persistent key manager: %w", err)
		}

		logger.Info("persistent signing keys loaded/generated",
			"algorithm", keyManager.Algorithm(),
			"num_keys", keyManager.NumSigners(),
			"issuer", cfg.Issuer,
		)

	default:
		logger.Info("initializing ephemeral key manager",
			"algorithm", cfg.Algorithm,
			"num_keys", cfg.NumKeys,
		)

		keyManager, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Algorithm: cfg.Algorithm,
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audience,
			NumKeys:   cfg.NumKeys,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
		}

		logger.Info("generated ephemeral signing keys",
			"algorithm", keyManager.Algorithm(),
			"num_keys", keyManager.NumSigners(),
			"issuer", cfg.Issuer,
		)
		logger.Warn("ephemeral keys: tokens issued before this start no longer verify")
	}

	return keyManager, nil
}
