package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dropguard/dashboard/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open builds the store selected by cfg.Session.Driver.
// The returned close function releases any connection the driver holds.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func() error, error) {
	noop := func() error { return nil }
	profile := cfg.Session.Profile

	switch cfg.Session.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory session store; sessions will not survive a restart")
		return NewMemoryStore(), noop, nil

	case config.DriverFile:
		dir, err := cfg.SessionDir()
		if err != nil {
			return nil, nil, err
		}
		fs, err := NewFileStore(dir, profile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file session store", zap.String("path", fs.Path()))
		return fs, noop, nil

	case config.DriverRedis:
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to Redis session store", zap.String("key", RedisKey(profile)))
		return NewRedisStore(client, profile), client.Close, nil

	case config.DriverPostgres:
		db, err := connectPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		ps := NewPostgresStore(db, profile)
		if err := ps.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Connected to PostgreSQL session store", zap.String("profile", profile))
		return ps, db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One profile, one row: a tiny pool is plenty
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
