// Package redisstate keeps the snapshot under a single Redis key.
package redisstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/jocilejr/whatsbot/internal/model"
	"github.com/jocilejr/whatsbot/internal/persist"
)

const defaultKey = "whatsbot:state"

type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type Store struct {
	rdb    *redis.Client
	key    string
	logger *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	key := cfg.Key
	if key == "" {
		key = defaultKey
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &Store{rdb: rdb, key: key, logger: logger.With("component", "persist", "backend", "redis")}, nil
}

func (s *Store) Name() string { return "redis" }

func (s *Store) Load(ctx context.Context) model.Snapshot {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("state key unreadable, starting empty", "key", s.key, "error", err)
		}
		return model.EmptySnapshot()
	}
	snap, err := persist.Decode(data)
	if err != nil {
		if !errors.Is(err, persist.ErrEmpty) {
			s.logger.Warn("state key corrupt, starting empty", "key", s.key, "error", err)
		}
		return model.EmptySnapshot()
	}
	return snap
}

func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := persist.Encode(snap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Close() error { return s.rdb.Close() }
