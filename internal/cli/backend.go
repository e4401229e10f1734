package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/complog/internal/adapters/file"
	"github.com/aretw0/complog/internal/config"
	"github.com/aretw0/complog/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/complog/pkg/adapters/redis"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/persistence/middleware"
	"github.com/redis/go-redis/v9"
)

// OpenArchive builds the archive manager selected by cfg.
// The returned close func releases backend connections and is never nil.
func OpenArchive(ctx context.Context, cfg config.ArchiveConfig, logger *slog.Logger) (*archive.Manager, func() error, error) {
	noop := func() error { return nil }
	mws, err := storeMiddlewares(cfg)
	if err != nil {
		return nil, noop, err
	}
	opts := []archive.Option{archive.WithLogger(logger)}

	switch strings.ToLower(cfg.Backend) {
	case "", config.BackendMemory:
		logger.Debug("Archive backend: memory", "middlewares", len(mws))
		return archive.NewManager(middleware.Chain(memory.NewStore(), mws...), opts...), noop, nil

	case config.BackendFile:
		logger.Debug("Archive backend: file", "path", cfg.Path, "middlewares", len(mws))
		return archive.NewManager(middleware.Chain(file.New(cfg.Path), mws...), opts...), noop, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}

		store := redisAdapter.NewFromClient(client,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.Redis.TTL),
		)
		if cfg.Redis.Lock {
			opts = append(opts,
				archive.WithLocker(redisAdapter.NewLocker(client, store.Prefix()+"lock:")),
				archive.WithLockTTL(cfg.Redis.LockTTL),
			)
		}
		logger.Debug("Archive backend: redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix, "lock", cfg.Redis.Lock, "lock_ttl", cfg.Redis.LockTTL, "middlewares", len(mws))
		return archive.NewManager(middleware.Chain(store, mws...), opts...), client.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown archive backend %q", cfg.Backend)
}

// storeMiddlewares redacts before it encrypts.
func storeMiddlewares(cfg config.ArchiveConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey == "" {
		return mws, nil
	}

	active, err := decodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("archive.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("archive.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return append(mws, encrypt), nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key is not valid base64: %w", err)
	}
	return key, nil
}
