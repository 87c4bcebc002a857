package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jocilejr/whatsbot/internal/config"
	"github.com/jocilejr/whatsbot/internal/persist"
	"github.com/jocilejr/whatsbot/internal/persist/redisstate"
	"github.com/jocilejr/whatsbot/internal/persist/s3state"
	"github.com/jocilejr/whatsbot/internal/persist/sqlstate"
)

// OpenBackend opens the snapshot backend selected by cfg.Driver.
func OpenBackend(ctx context.Context, cfg config.Storage, logger *slog.Logger) (persist.Backend, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return persist.NewFileBackend(cfg.DataFile, logger), nil
	case config.DriverMemory:
		return persist.NewMemoryBackend(), nil
	case config.DriverSQLite:
		return sqlstate.OpenSQLite(ctx, cfg.SQLitePath, logger)
	case config.DriverPostgres:
		return sqlstate.OpenPostgres(ctx, cfg.PostgresDSN, logger)
	case config.DriverS3:
		return s3state.New(ctx, s3state.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Key:       cfg.S3Key,
			PathStyle: cfg.S3PathStyle,
		}, logger)
	case config.DriverRedis:
		return redisstate.New(ctx, redisstate.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
