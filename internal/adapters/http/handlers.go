package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/usecases"
)

const defaultHours = domain.MaxHoursBack

// FeedHandler proxies one hourly snapshot of the upstream feed.
func FeedHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hour, err := strconv.Atoi(c.Params("hour"))
		if err != nil {
			return errBadRequest(c, "hour must be an integer")
		}
		return sendSnapshot(c, deps, hour)
	}
}

// TreasureHandler is the legacy latest-snapshot endpoint.
func TreasureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return sendSnapshot(c, deps, 0)
	}
}

func sendSnapshot(c *fiber.Ctx, deps *Dependencies, hour int) error {
	snap, err := deps.Feed.FetchSnapshot(c.UserContext(), hour)
	if err != nil {
		return errFromService(c, err)
	}
	c.Set("Cache-Control", fmt.Sprintf("public, s-maxage=%d", deps.Feed.TTLSeconds()))
	return c.JSON(snap)
}

// ListBalloonsHandler returns the paginated, optionally filtered fleet catalogue.
func ListBalloonsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if len(query) > 100 {
			return errBadRequest(c, "query too long (max 100 characters)")
		}
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 50
		}

		balloons, total := deps.Catalog.Balloons(query, offset, limit)

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: balloons, Pagination: pg})
	}
}

// PressureLevelsHandler lists the selectable pressure levels.
func PressureLevelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Catalog.PressureLevels())
	}
}

// TrackHandler returns a balloon's chronological path.
func TrackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "balloon id must be an integer")
		}
		hours := c.QueryInt("hours", defaultHours)

		track, err := deps.Tracks.Track(c.UserContext(), id, hours)
		if err != nil {
			return errFromService(c, err)
		}
		c.Set("Cache-Control", fmt.Sprintf("public, s-maxage=%d", deps.Feed.TTLSeconds()))
		return c.JSON(track)
	}
}

// gridResponse pairs a grid with the track it was generated from.
type gridResponse struct {
	Track *domain.Track `json:"track,omitempty"`
	domain.GridResult
}

// BalloonGridHandler returns the wind-sampling grid around a balloon's path.
func BalloonGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "balloon id must be an integer")
		}
		hours := c.QueryInt("hours", defaultHours)
		n := c.QueryInt("n", deps.Grid.Resolution)
		minSpan := c.QueryFloat("min_span", deps.Grid.MinSpanDeg)

		track, grid, err := deps.Maps.Grid(c.UserContext(), id, hours, n, minSpan)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(gridResponse{Track: track, GridResult: grid})
	}
}

// gridRequest is the body of POST /v1/grid.
type gridRequest struct {
	Path       []domain.TrackPoint `json:"path"`
	N          *int                `json:"n"`
	MinSpanDeg *float64            `json:"min_span_deg"`
}

// GenerateGridHandler computes a grid for a caller-supplied path.
func GenerateGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req gridRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(req.Path) > 10000 {
			return errBadRequest(c, "path too long (max 10000 points)")
		}
		for i, p := range req.Path {
			if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
				return errBadRequest(c, fmt.Sprintf("path[%d] is out of range", i))
			}
		}

		n := deps.Grid.Resolution
		if req.N != nil {
			n = *req.N
		}
		minSpan := deps.Grid.MinSpanDeg
		if req.MinSpanDeg != nil {
			minSpan = *req.MinSpanDeg
		}

		grid, err := deps.Maps.Generate(req.Path, n, minSpan)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(grid)
	}
}

// MapHandler returns the track, grid and wind layer for one balloon.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "balloon id must be an integer")
		}
		q := usecases.MapQuery{
			BalloonID:   id,
			Hours:       c.QueryInt("hours", defaultHours),
			N:           c.QueryInt("n", deps.Grid.Resolution),
			MinSpanDeg:  c.QueryFloat("min_span", deps.Grid.MinSpanDeg),
			PressureHPa: c.QueryInt("pressure", deps.Grid.PressureHPa),
		}
		// default to the most recent hour of the window
		q.HourIndex = c.QueryInt("hour_index", q.Hours)

		data, err := deps.Maps.Load(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err)
		}
		if data.ForecastError != nil {
			LoggerFromCtx(c.UserContext()).Warn("forecast unavailable",
				"balloon_id", id, "source", data.ForecastError.Source, "error", data.ForecastError.Message)
			c.Set("Cache-Control", "no-store")
		}
		return c.JSON(data)
	}
}
