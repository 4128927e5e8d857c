package store

import (
	"context"
	"fmt"
	"strings"

	"moviely/internal/config"
	"moviely/internal/project"
	"moviely/internal/services"
)

// Open builds the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, assets project.AssetChecker) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "config is nil", nil)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendJSON, "":
		s, err := NewJSONDir(cfg.Paths.ProjectsDir, assets)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := OpenSQLite(ctx, cfg.Storage.SQLitePath, assets)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		s, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Prefix:   cfg.Storage.RedisPrefix,
		}, assets)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "store", "open",
			fmt.Sprintf("unknown storage backend %q", cfg.Storage.Backend), nil)
	}
}
