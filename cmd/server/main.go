package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/auth"
	"github.com/jocilejr/whatsbot/internal/config"
	"github.com/jocilejr/whatsbot/internal/hub"
	"github.com/jocilejr/whatsbot/internal/logging"
	"github.com/jocilejr/whatsbot/internal/metrics"
	"github.com/jocilejr/whatsbot/internal/middleware"
	"github.com/jocilejr/whatsbot/internal/server"
	"github.com/jocilejr/whatsbot/internal/store"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("error", "text", os.Stderr).Error("invalid configuration", "error", err)
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	backend, err := server.OpenBackend(openCtx, cfg.Storage, logger)
	cancel()
	if err != nil {
		logger.Error("open storage failed", "driver", cfg.Storage.Driver, "error", err)
		return err
	}

	recorder := metrics.New()
	st := store.New(ctx, backend, store.Options{Logger: logger, Metrics: recorder})
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("close storage failed", "error", err)
		}
	}()

	tokenCfg := auth.DefaultTokenConfig(cfg.MasterSecret)
	tokenCfg.Expiry = cfg.TokenExpiry

	wsHub := hub.New()
	defer wsHub.CloseAll()
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()

	router := server.NewRouter(server.Deps{
		Store:        st,
		TokenConfig:  tokenCfg,
		Hub:          wsHub,
		Metrics:      recorder,
		Logger:       logger,
		LoginLimiter: loginLimiter,
	})

	if err := server.Run(ctx, cfg, router, logger); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
