package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"github.com/aretw0/abacus/pkg/session"
)

// CreateLogger configures the logger for interactive commands.
// Outside debug mode nothing is logged so the display stays clean.
func CreateLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// CreateHooks combines log hooks with the metrics hooks, when metrics are enabled.
func CreateHooks(logger *slog.Logger, metrics *observability.Metrics) domain.LifecycleHooks {
	hooks := []domain.LifecycleHooks{observability.LogHooks(logger)}
	if metrics != nil {
		hooks = append(hooks, metrics.Hooks())
	}
	return observability.Combine(hooks...)
}

// CreateSessionManager opens the configured session store, wrapped in mws.
// The returned close function releases the backend connection.
func CreateSessionManager(ctx context.Context, cfg *config.Config, logger *slog.Logger, mws ...middleware.Middleware) (*session.Manager, func() error, error) {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Store.LockTTL),
	}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory session store")
		store := middleware.Chain(memory.NewStore(), mws...)
		return session.NewManager(store, opts...), func() error { return nil }, nil

	case config.BackendRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix),
			redis.WithTTL(rc.TTL),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		logger.Info("using redis session store", "addr", rc.Addr, "prefix", rc.Prefix, "ttl", rc.TTL)

		opts = append(opts, session.WithLocker(redis.NewLocker(store.Client(), store.Prefix())))
		return session.NewManager(middleware.Chain(store, mws...), opts...), store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
