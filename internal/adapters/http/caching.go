package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that know their data freshness set the header themselves.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on successful GET requests
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() >= 400 {
			return err
		}

		// Don't override if already set
		if existing := string(c.Response().Header.Peek(fiber.HeaderCacheControl)); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/v1/pressure-levels":
			ttl = "public, max-age=86400" // static table

		case strings.HasPrefix(path, "/v1/balloons") && strings.HasSuffix(path, "/map"):
			ttl = "public, max-age=60" // forecast-backed, refreshed hourly upstream

		case strings.HasPrefix(path, "/v1/balloons") && strings.HasSuffix(path, "/grid"):
			ttl = "public, s-maxage=10"

		case path == "/v1/balloons":
			ttl = "public, max-age=3600" // catalogue only changes with fleet size

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=30"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
