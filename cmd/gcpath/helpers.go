package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"gcpath/internal/cache"
	"gcpath/internal/config"
	"gcpath/internal/gcp"
	"gcpath/internal/hierarchy"
	"gcpath/internal/loader"
	"gcpath/internal/logging"
)

// loadedConfig reads the user config, falling back to defaults when the
// file is absent or broken. Config problems must not block read-only
// lookups.
func loadedConfig(logger *logging.Logger) *config.Config {
	if logger == nil {
		logger = logging.Discard()
	}
	dir, err := config.Dir()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		logger.Warn("config unreadable, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("config invalid, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if debugFlag {
		level = "debug"
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(level),
	})
}

func newContext() context.Context {
	return context.Background()
}

// effectiveUseAssetAPI resolves backend selection. Explicit flags win over
// the config file default; the negative flag wins over everything.
func effectiveUseAssetAPI(cfg *config.Config) bool {
	if noUseAssetAPI {
		return false
	}
	if rootCmd.PersistentFlags().Changed("use-asset-api") {
		return useAssetAPI
	}
	return cfg.UseAssetAPI
}

func cacheStore(cfg *config.Config, logger *logging.Logger) *cache.Store {
	dir, err := config.Dir()
	if err != nil {
		return nil
	}
	ttl := time.Duration(cfg.Cache.TtlHours) * time.Hour
	return cache.NewStore(filepath.Join(dir, "cache.json"), ttl, clockwork.NewRealClock(), logger)
}

// loadHierarchy answers from the cache when allowed and fresh, otherwise
// assembles from the APIs and writes the snapshot back. An organization
// filter bypasses the cache: the snapshot always holds the full inventory.
func loadHierarchy(ctx context.Context, orgFilter []string, logger *logging.Logger) (*hierarchy.Hierarchy, error) {
	cfg := loadedConfig(logger)

	var store *cache.Store
	if cfg.Cache.Enabled && !noCacheFlag && len(orgFilter) == 0 {
		store = cacheStore(cfg, logger)
	}

	if store != nil && !refreshFlag {
		if h := store.Read(); h != nil {
			logger.Debug("hierarchy served from cache", nil)
			return h, nil
		}
	}

	clients, err := gcp.NewClients(ctx)
	if err != nil {
		return nil, err
	}
	defer clients.Close()

	filter := orgFilter
	if len(filter) == 0 {
		filter = cfg.Organizations
	}

	h, err := loader.New(clients, clients, logger).Load(ctx, loader.Options{
		DisplayNames: filter,
		UseAssetAPI:  effectiveUseAssetAPI(cfg),
	})
	if err != nil {
		return nil, err
	}

	if store != nil {
		store.Write(h)
	}
	return h, nil
}
