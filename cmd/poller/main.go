package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/balloonwind/internal/adapters/nats"
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
	cfg, err := config.Load("balloonwind-poller")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	var cache ports.CacheService
	vc, err := valkey.New(valkey.Options{
		Addr:     cfg.Valkey.Addr,
		Password: cfg.Valkey.Password,
		DB:       cfg.Valkey.DB,
		Prefix:   cfg.Valkey.KeyPrefix,
	})
	if err != nil {
		slog.Warn("valkey unavailable, priming disabled", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	source := windborne.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout())
	feed := usecases.NewFeedService(source, cache, cfg.Cache.FeedTTLSeconds)
	realtime := usecases.NewRealtimeService(source, feed, pub, nil)

	hours := []int{0}
	if cfg.Poller.PublishAllHours {
		hours = make([]int, domain.MaxHoursBack+1)
		for h := range hours {
			hours[h] = h
		}
	}

	ticker := time.NewTicker(cfg.Poller.Interval())
	defer ticker.Stop()

	slog.Info("balloon poller started",
		"interval", cfg.Poller.Interval().String(), "hours", len(hours), "upstream", cfg.Upstream.BaseURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Run once immediately
	pollAll(ctx, realtime, hours)

	for {
		select {
		case <-ticker.C:
			pollAll(ctx, realtime, hours)
		case <-ctx.Done():
			return
		case sig := <-quit:
			slog.Info("shutting down balloon poller", "signal", sig.String())
			cancel()
			return
		}
	}
}

// pollAll refreshes and broadcasts every configured hour, at most four at a time.
func pollAll(ctx context.Context, realtime *usecases.RealtimeService, hours []int) {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4)

	for _, h := range hours {
		wg.Add(1)
		go func(hour int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			logger := slog.With("hour", hour)
			event, err := realtime.Refresh(ctx, hour)
			if err != nil {
				if domain.IsNotFound(err) {
					logger.Debug("hour not published yet")
					return
				}
				logger.Warn("refresh failed", "error", err)
				return
			}

			positions, err := realtime.Broadcast(ctx, event)
			if err != nil {
				logger.Warn("broadcast failed", "error", err)
				return
			}
			if hour == 0 {
				logger.Info("latest positions broadcast", "positions", positions)
			}
		}(h)
	}

	wg.Wait()
}
