package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/ports"
	"github.com/samirrijal/balloonwind/internal/pkg/metrics"
)

// DefaultForecastTTLSeconds is how long a forecast batch stays cached.
const DefaultForecastTTLSeconds = 600

// ForecastService batches grid points into forecast queries.
type ForecastService struct {
	source     ports.ForecastSource
	cache      ports.CacheService
	levels     []domain.PressureLevel
	ttlSeconds int
}

// NewForecastService creates a new ForecastService requesting every
// supported pressure level.
func NewForecastService(source ports.ForecastSource, cache ports.CacheService, ttlSeconds int) *ForecastService {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultForecastTTLSeconds
	}
	return &ForecastService{
		source:     source,
		cache:      cache,
		levels:     domain.PressureLevels,
		ttlSeconds: ttlSeconds,
	}
}

// Variables lists the hourly variables for the given levels: u, v and
// geopotential height per level, in level order.
func Variables(levels []domain.PressureLevel) []string {
	vars := make([]string, 0, 3*len(levels))
	for _, l := range levels {
		vars = append(vars, domain.WindUVar(l.HPa), domain.WindVVar(l.HPa), domain.GeopotentialHeightVar(l.HPa))
	}
	return vars
}

// Fetch queries the wind fields at every point over the window. An empty
// point set returns nil without a request.
func (s *ForecastService) Fetch(ctx context.Context, points []domain.GridPoint, window domain.Window) ([]domain.WindSeries, error) {
	if len(points) == 0 {
		return nil, nil
	}

	req := domain.ForecastRequest{
		Points:    points,
		Variables: Variables(s.levels),
		Window:    window,
	}

	cacheKey := forecastKey(req)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var series []domain.WindSeries
			if err := json.Unmarshal(data, &series); err == nil {
				metrics.CacheHits.WithLabelValues("forecast").Inc()
				return series, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("forecast").Inc()
	}

	series, err := s.source.FetchWind(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch wind: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(series); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttlSeconds)
		}
	}

	return series, nil
}

// forecastKey hashes the coordinates and window; point lists are too long
// for a readable key.
func forecastKey(req domain.ForecastRequest) string {
	var b strings.Builder
	for _, p := range req.Points {
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', 4, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lng, 'f', 4, 64))
		b.WriteByte(';')
	}
	b.WriteString(req.Window.StartHour())
	b.WriteByte('/')
	b.WriteString(req.Window.EndHour())
	b.WriteByte('/')
	b.WriteString(strings.Join(req.Variables, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return "forecast:" + hex.EncodeToString(sum[:16])
}

// VectorsAt extracts the wind at one pressure level and hour from every
// series. Points with a missing u or v sample are skipped.
func VectorsAt(series []domain.WindSeries, hPa, hourIndex int) []domain.WindVector {
	uName, vName, zName := domain.WindUVar(hPa), domain.WindVVar(hPa), domain.GeopotentialHeightVar(hPa)

	vectors := make([]domain.WindVector, 0, len(series))
	for _, s := range series {
		u, ok := sampleAt(s, uName, hourIndex)
		if !ok {
			continue
		}
		v, ok := sampleAt(s, vName, hourIndex)
		if !ok {
			continue
		}

		vec := domain.WindVector{
			Lat:          s.Lat,
			Lng:          s.Lng,
			U:            u,
			V:            v,
			Speed:        math.Hypot(u, v),
			DirectionDeg: WindDirection(u, v),
		}
		if z, ok := sampleAt(s, zName, hourIndex); ok {
			vec.GeopotentialHeight = &z
		}
		vectors = append(vectors, vec)
	}
	return vectors
}

// WindDirection is the meteorological direction the wind blows from, in
// degrees clockwise from north, in [0, 360).
func WindDirection(u, v float64) float64 {
	deg := math.Atan2(-u, -v) * 180 / math.Pi
	deg = math.Mod(deg+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

func sampleAt(s domain.WindSeries, name string, i int) (float64, bool) {
	values, ok := s.Series(name)
	if !ok || i < 0 || i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}
