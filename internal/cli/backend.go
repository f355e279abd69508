package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/rewind/internal/settings"
	"github.com/aretw0/rewind/pkg/adapters/file"
	"github.com/aretw0/rewind/pkg/adapters/memory"
	"github.com/aretw0/rewind/pkg/adapters/redis"
	"github.com/aretw0/rewind/pkg/persistence/middleware"
	"github.com/aretw0/rewind/pkg/ports"
)

// Backend is the persistence selected by settings.
type Backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker // nil unless the store is shared between processes
	close  func() error
}

// Close releases backend connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the store named by s.Store, sealing snapshots when an
// encryption key is configured. Redis connections are pinged so
// misconfiguration fails at startup.
func OpenBackend(ctx context.Context, s settings.Settings) (*Backend, error) {
	b, err := openStore(ctx, s)
	if err != nil {
		return nil, err
	}
	enc, err := s.Encryption()
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if enc != nil {
		b.Store = middleware.Wrap(b.Store, middleware.NewEncryptionMiddleware(*enc))
	}
	return b, nil
}

func openStore(ctx context.Context, s settings.Settings) (*Backend, error) {
	switch s.Store {
	case settings.StoreMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case settings.StoreFile:
		return &Backend{Store: file.New(s.Dir)}, nil
	case settings.StoreRedis:
		opts := []redis.Option{redis.WithPrefix(s.Redis.Prefix)}
		if s.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(s.Redis.TTL))
		}
		store := redis.New(s.Redis.Addr, s.Redis.Password, s.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis %s: %w", s.Redis.Addr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), s.Redis.Prefix),
			close:  store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q", s.Store)
}
