package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/pkg/adapters/file"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/adapters/redis"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Backend is the configured preset store. Locker is set only for backends
// shared between processes.
type Backend struct {
	Store  ports.PresetStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the preset store selected by cfg.Backend, wrapped so
// that only valid specs are saved and every call is traced.
func OpenBackend(ctx context.Context, cfg config.PresetsConfig, logger *slog.Logger) (*Backend, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b.Store = middleware.Chain(b.Store,
		middleware.NewObservedMiddleware(logger, nil),
		middleware.NewValidationMiddleware(middleware.MaxSpecElements),
	)
	return b, nil
}

func openBackend(ctx context.Context, cfg config.PresetsConfig) (*Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return &Backend{Store: memory.NewStore()}, nil
	case "file":
		return &Backend{Store: file.New(cfg.Dir)}, nil
	case "redis":
		store := redis.New(cfg.RedisAddr, cfg.Password, cfg.DB,
			redis.WithPrefix(cfg.Prefix),
			redis.WithTTL(cfg.TTL),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), cfg.Prefix),
			close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown preset backend %q", cfg.Backend)
	}
}
