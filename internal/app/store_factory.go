package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/markbook/internal/baseline"
	"github.com/shrimpsizemoose/markbook/internal/store"
	"github.com/shrimpsizemoose/markbook/internal/store/postgres"
	"github.com/shrimpsizemoose/markbook/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.RowStore, error) {
	dbType := store.DBTypeSQLite
	if strings.HasPrefix(dsn, "postgres") {
		dbType = store.DBTypePostgres
	}

	config := &store.DBConfig{DSN: dsn, Type: dbType, MigrationsDir: migrationsDir}

	switch dbType {
	case store.DBTypePostgres:
		s, err := postgres.NewPostgresStore(config)
		if err != nil {
			return nil, err
		}
		return s, nil
	case store.DBTypeSQLite:
		s, err := sqlite.NewSQLiteStore(config)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}

func NewBaselineStore(config *Config) (baseline.Store, error) {
	ttl, err := config.SessionTTL()
	if err != nil {
		return nil, err
	}

	cfg := baseline.Config{
		RedisURL:    config.Baseline.RedisURL,
		KeyTemplate: config.Baseline.KeyTemplate,
		SessionTTL:  ttl,
	}

	switch config.Baseline.Backend {
	case "redis":
		s, err := baseline.NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory", "":
		return baseline.NewMemoryStore(cfg), nil
	default:
		return nil, fmt.Errorf("unknown baseline backend: %s", config.Baseline.Backend)
	}
}
