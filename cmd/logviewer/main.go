package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kidpech/logviewer/internal/app"
	"github.com/kidpech/logviewer/internal/app/diagnostics"
	"github.com/kidpech/logviewer/internal/app/web"
	"github.com/kidpech/logviewer/internal/config"
	"github.com/kidpech/logviewer/internal/infrastructure/logging"
	"github.com/kidpech/logviewer/internal/infrastructure/monitoring"
	"github.com/kidpech/logviewer/internal/infrastructure/ratelimit"
	redisinfra "github.com/kidpech/logviewer/internal/infrastructure/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	base, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Sync(base)

	if err := monitoring.InitSentry(cfg.Monitoring, cfg.App); err != nil {
		base.Warn("sentry init failed", zap.Error(err))
	}
	defer monitoring.Flush()
	if cfg.Monitoring.PrometheusEnabled {
		if err := monitoring.Init(prometheus.DefaultRegisterer); err != nil {
			base.Warn("metrics registration failed", zap.Error(err))
		}
	}

	logBuffer := diagnostics.NewLogBuffer()
	capture := logging.NewCaptureCore(logBuffer,
		logging.WithObserver(func(level diagnostics.Level, message string) {
			monitoring.ObserveEntry(level.String())
			if level == diagnostics.LevelError {
				monitoring.ReportError(sentry.CurrentHub(), cfg.App.Name, message)
			}
		}),
	)
	logger := logging.WithCapture(base, capture).Named(cfg.App.Name)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		if cfg.Redis.Addr != "" {
			client, err := redisinfra.Connect(ctx, cfg.Redis, 5*time.Second)
			if err != nil {
				logger.Warn("redis unavailable, using in-memory rate limit", zap.Error(err))
			} else {
				defer client.Close()
				limiter = ratelimit.NewRedisLimiter(client.Native, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RedisPrefix)
			}
		}
	}

	router := app.NewRouter(app.RouterDeps{
		Config:      cfg,
		Diagnostics: diagnostics.NewHandler(logBuffer, web.Index),
		Logger:      logger,
		Limiter:     limiter,
	})

	server := &app.Server{Engine: router, Addr: cfg.App.ListenAddr(), Logger: logger}
	if err := server.Start(); err != nil {
		logger.Error("log viewer failed to start, continuing without it", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				base.Warn("log viewer shutdown", zap.Error(err))
			}
		}()
		go func() {
			if err := <-server.Done(); err != nil {
				logger.Error("log viewer stopped", zap.Error(err))
			}
		}()
	}

	runHost(ctx, logger, cfg.Diagnostics.HeartbeatInterval)
	logger.Info("shutting down")
}

// runHost stands in for the application whose logs are being viewed.
func runHost(ctx context.Context, logger *zap.Logger, interval time.Duration) {
	logger.Info("host started", zap.Duration("heartbeat", interval))
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var beats int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			beats++
			switch {
			case beats%12 == 0:
				logger.Error("heartbeat missed deadline", zap.Int("beat", beats))
			case beats%4 == 0:
				logger.Warn("heartbeat slow", zap.Int("beat", beats))
			default:
				logger.Info("heartbeat", zap.Int("beat", beats))
			}
		}
	}
}
