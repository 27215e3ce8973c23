package main

import (
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/platformsetup/internal/config"
	"github.com/alfredjeanlab/platformsetup/internal/events"
	"github.com/alfredjeanlab/platformsetup/internal/store"
	"github.com/alfredjeanlab/platformsetup/internal/store/postgres"
	"github.com/alfredjeanlab/platformsetup/internal/store/sqlite"
)

// openPlatform connects to the database of the configured vendor.
func openPlatform(cfg *config.Config) (store.Platform, error) {
	switch cfg.DBVendor {
	case config.VendorPostgres:
		s, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.VendorSQLite:
		s, err := sqlite.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database vendor %q", cfg.DBVendor)
	}
}

// openPublisher returns a NATS publisher when PLATFORM_NATS_URL is set. A
// broker that cannot be reached disables events rather than the command.
func openPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.NATSURL == "" {
		logger.Debug("events disabled (PLATFORM_NATS_URL not set)")
		return &events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		logger.Warn("events disabled, cannot connect to NATS", "nats_url", cfg.NATSURL, "err", err)
		return &events.NoopPublisher{}
	}
	logger.Debug("events enabled", "nats_url", cfg.NATSURL)
	return pub
}
