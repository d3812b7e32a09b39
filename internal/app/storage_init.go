package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/storage/memory"
	"github.com/vladislavdragonenkov/unieats/internal/storage/postgres"
	"github.com/vladislavdragonenkov/unieats/internal/storage/redis"
	"github.com/vladislavdragonenkov/unieats/internal/storage/sqlite"
)

// openStorage открывает хранилище выбранного драйвера.
func openStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.Storage, error) {
	logger = logger.WithField("storage_driver", string(cfg.StorageDriver))

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Info("using in-memory storage, cart will not survive restart")
		return memory.NewStorage(), nil

	case StorageDriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.Namespace)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		logger.WithField("path", cfg.SQLitePath).Debug("sqlite storage opened")
		return st, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres storage: %w", err)
			}
		}
		logger.Info("postgres storage opened")
		return postgres.NewStorage(store, cfg.Namespace), nil

	case StorageDriverRedis:
		st, err := redis.Open(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.Namespace)
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("redis storage opened")
		return st, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
