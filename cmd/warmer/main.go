package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/balloonwind/internal/adapters/nats"
	"github.com/samirrijal/balloonwind/internal/adapters/valkey"
	"github.com/samirrijal/balloonwind/internal/adapters/windborne"
	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/ports"
	"github.com/samirrijal/balloonwind/internal/core/usecases"
	"github.com/samirrijal/balloonwind/internal/pkg/config"
	"github.com/samirrijal/balloonwind/internal/pkg/logging"
	"github.com/samirrijal/balloonwind/internal/workflows"
)

func main() {
	cfg, err := config.Load("balloonwind-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	vc, err := valkey.New(valkey.Options{
		Addr:     cfg.Valkey.Addr,
		Password: cfg.Valkey.Password,
		DB:       cfg.Valkey.DB,
		Prefix:   cfg.Valkey.KeyPrefix,
	})
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer vc.Close()

	// Broadcasting is optional for the warmer
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, broadcast disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	source := windborne.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout())
	feed := usecases.NewFeedService(source, vc, cfg.Cache.FeedTTLSeconds)
	realtime := usecases.NewRealtimeService(source, feed, publisher, nil)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.FeedWarmWorkflow)
	w.RegisterActivity(&workflows.FeedActivities{
		Realtime: realtime,
		Feed:     feed,
	})

	if cfg.Temporal.Cron != "" {
		run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
			ID:           "feed-warm",
			TaskQueue:    cfg.Temporal.TaskQueue,
			CronSchedule: cfg.Temporal.Cron,
		}, workflows.FeedWarmWorkflow, workflows.FeedWarmInput{
			Hours:     domain.MaxHoursBack,
			Broadcast: publisher != nil,
		})
		if err != nil {
			slog.Warn("schedule feed warm workflow", "error", err)
		} else {
			slog.Info("feed warm scheduled", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", cfg.Temporal.Cron)
		}
	}

	slog.Info("feed warm worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
