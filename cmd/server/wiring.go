package main

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/subledger/internal/adapter/http/handler"
	"github.com/iho/subledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/subledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/subledger/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/subledger/internal/adapter/repository/sqlite"
	"github.com/iho/subledger/internal/infrastructure/config"
	"github.com/iho/subledger/internal/infrastructure/postgres"
	infraredis "github.com/iho/subledger/internal/infrastructure/redis"
	"github.com/iho/subledger/internal/usecase"
)

// storage is the durable party and document store selected by
// STORAGE_DRIVER.
type storage struct {
	parties   usecase.PartyRepository
	documents usecase.DocumentRepository
	checks    []handler.HealthCheck
	close     func()
}

func (s *storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				pool.Close()
				return nil, err
			}
		}

		return &storage{
			parties:   postgresRepo.NewPartyRepository(pool),
			documents: postgresRepo.NewDocumentRepository(pool, postgresRepo.NewRetrier()),
			checks:    []handler.HealthCheck{{Name: "postgres", Ping: pool.Ping}},
			close:     pool.Close,
		}, nil

	case config.StorageSQLite:
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite store")

		return &storage{
			parties:   db.Parties(),
			documents: db.Documents(),
			checks:    []handler.HealthCheck{{Name: "sqlite", Ping: db.Ping}},
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("failed to close sqlite store")
				}
			},
		}, nil

	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{parties: store.Parties(), documents: store.Documents()}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ephemeral holds the expiring state: ledger cache, reconciliation
// sessions and idempotency keys. Redis when REDIS_URL is set, memory
// otherwise.
type ephemeral struct {
	cache       usecase.Cache
	sessions    usecase.SessionStore
	idempotency usecase.IdempotencyStore
	checks      []handler.HealthCheck
	// sweepers drop expired in-memory entries; Redis expires keys itself.
	sweepers []func() int
	close    func()
}

func (e *ephemeral) Close() {
	if e.close != nil {
		e.close()
	}
}

func openEphemeral(ctx context.Context, cfg *config.Config) (*ephemeral, error) {
	if cfg.RedisURL == "" {
		cache := memory.NewCache()
		sessions := memory.NewSessionStore()
		idempotency := memory.NewIdempotencyStore()
		return &ephemeral{
			cache:       cache,
			sessions:    sessions,
			idempotency: idempotency,
			sweepers:    []func() int{cache.Sweep, sessions.Sweep, idempotency.Sweep},
		}, nil
	}

	client, err := infraredis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ephemeral{
		cache:       redisRepo.NewCache(client),
		sessions:    redisRepo.NewSessionStore(client),
		idempotency: redisRepo.NewIdempotencyStore(client),
		checks:      []handler.HealthCheck{{Name: "redis", Ping: redisPing(client)}},
		close:       func() { client.Close() },
	}, nil
}

func redisPing(client *goredis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return infraredis.Ping(ctx, client)
	}
}

// runJanitor sweeps in-memory expirations until ctx is done.
func (e *ephemeral) runJanitor(ctx context.Context, interval time.Duration) {
	if len(e.sweepers) == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweep()
		}
	}
}

func (e *ephemeral) sweep() int {
	n := 0
	for _, sweep := range e.sweepers {
		n += sweep()
	}
	return n
}
