package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/balloonwind/internal/adapters/http"
	natsadapter "github.com/samirrijal/balloonwind/internal/adapters/nats"
	"github.com/samirrijal/balloonwind/internal/adapters/openmeteo"
	"github.com/samirrijal/balloonwind/internal/adapters/valkey"
	"github.com/samirrijal/balloonwind/internal/adapters/windborne"
	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/ports"
	"github.com/samirrijal/balloonwind/internal/core/usecases"
	"github.com/samirrijal/balloonwind/internal/pkg/config"
	"github.com/samirrijal/balloonwind/internal/pkg/logging"
	"github.com/samirrijal/balloonwind/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("balloonwind-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache (optional: without it every request goes upstream)
	var cache ports.CacheService
	var cachePinger http.Pinger
	vc, err := valkey.New(valkey.Options{
		Addr:     cfg.Valkey.Addr,
		Password: cfg.Valkey.Password,
		DB:       cfg.Valkey.DB,
		Prefix:   cfg.Valkey.KeyPrefix,
	})
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer vc.Close()
		cache, cachePinger = vc, vc
	}

	// Upstream clients
	feedClient := windborne.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout())
	forecastClient := openmeteo.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.Timeout())

	// Use cases
	feedSvc := usecases.NewFeedService(feedClient, cache, cfg.Cache.FeedTTLSeconds)
	trackSvc := usecases.NewTrackService(feedSvc, cfg.Upstream.FleetSize, nil)
	forecastSvc := usecases.NewForecastService(forecastClient, cache, cfg.Forecast.CacheTTLSeconds)
	mapSvc := usecases.NewMapService(trackSvc, forecastSvc, cfg.Grid.Options())
	catalogSvc := usecases.NewCatalogService(cfg.Upstream.FleetSize)

	// Snapshots broadcast by the poller prime the local cache
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.Durable)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeSnapshots(ctx, func(ctx context.Context, event *domain.SnapshotEvent) error {
			return feedSvc.Prime(ctx, event.Hour, event.Snapshot)
		})
		if err != nil {
			slog.Warn("snapshot subscription failed", "error", err)
		}
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Drain()
	}

	deps := &http.Dependencies{
		Feed:    feedSvc,
		Tracks:  trackSvc,
		Maps:    mapSvc,
		Catalog: catalogSvc,
		Grid: http.GridDefaults{
			Resolution:  cfg.Grid.DefaultResolution,
			MinSpanDeg:  cfg.Grid.DefaultMinSpanDeg,
			PressureHPa: cfg.Grid.DefaultPressureHPa,
		},
		NATS:  natsConn,
		Cache: cachePinger,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // long POST /v1/grid paths
		AppName:      "BalloonWind API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "ETag, Link, X-Request-ID, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "upstream", cfg.Upstream.BaseURL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
