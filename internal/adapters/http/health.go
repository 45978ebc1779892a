package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

const readyTimeout = 3 * time.Second

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	FleetSize int    `json:"fleet_size"`
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler is the liveness probe. It never touches a dependency.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(healthResponse{
			Status:    "healthy",
			Uptime:    time.Since(startedAt).Round(time.Second).String(),
			Version:   Version,
			FleetSize: deps.Tracks.FleetSize(),
		})
	}
}

// readinessCheck reports "ok", or a failure description and false.
type readinessCheck func(ctx context.Context) (string, bool)

func natsCheck(deps *Dependencies) readinessCheck {
	return func(context.Context) (string, bool) {
		switch {
		case deps.NATS == nil:
			return "not configured", true
		case !deps.NATS.IsConnected():
			return "disconnected", false
		}
		return "ok", true
	}
}

func cacheCheck(deps *Dependencies) readinessCheck {
	return func(ctx context.Context) (string, bool) {
		if deps.Cache == nil {
			return "not configured", true
		}
		if err := deps.Cache.Ping(ctx); err != nil {
			return "error: " + err.Error(), false
		}
		return "ok", true
	}
}

// ReadyHandler checks the live-update bus and the response cache. Either
// may be absent; a configured dependency that is down fails readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := map[string]readinessCheck{
		"nats":  natsCheck(deps),
		"cache": cacheCheck(deps),
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		resp := readinessResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
		for name, check := range checks {
			result, ok := check(ctx)
			resp.Checks[name] = result
			if !ok {
				resp.Status = "not ready"
			}
		}

		if resp.Status != "ready" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		return c.JSON(resp)
	}
}
