package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/pkg/geospatial"
	"github.com/samirrijal/balloonwind/internal/pkg/metrics"
)

// MaxResolution is the largest accepted grid resolution.
const MaxResolution = 20

// MapQuery selects a balloon, its history and the wind layer to overlay.
type MapQuery struct {
	BalloonID   int
	Hours       int
	N           int
	MinSpanDeg  float64
	PressureHPa int
	HourIndex   int
}

// MapService combines a track, its sampling grid and the wind forecast.
type MapService struct {
	tracks   *TrackService
	forecast *ForecastService
	grid     geospatial.Options
}

// NewMapService creates a new MapService.
func NewMapService(tracks *TrackService, forecast *ForecastService, grid geospatial.Options) *MapService {
	return &MapService{tracks: tracks, forecast: forecast, grid: grid}
}

// Generate builds and counts a grid for an arbitrary path.
func (s *MapService) Generate(path []domain.TrackPoint, n int, minSpanDeg float64) (domain.GridResult, error) {
	if n < 1 || n > MaxResolution {
		return domain.GridResult{}, fmt.Errorf("%w: n must be between 1 and %d, got %d", domain.ErrInvalidInput, MaxResolution, n)
	}
	if minSpanDeg <= 0 {
		minSpanDeg = geospatial.DefaultMinSpanDeg
	}
	res := s.grid.Generate(path, n, minSpanDeg)
	if res.Strategy != "" {
		metrics.GridsGenerated.WithLabelValues(string(res.Strategy)).Inc()
	}
	return res, nil
}

// Grid assembles a balloon's track and returns its sampling grid.
func (s *MapService) Grid(ctx context.Context, balloonID, hours, n int, minSpanDeg float64) (*domain.Track, domain.GridResult, error) {
	track, err := s.tracks.Track(ctx, balloonID, hours)
	if err != nil {
		return nil, domain.GridResult{}, err
	}
	res, err := s.Generate(track.Points, n, minSpanDeg)
	if err != nil {
		return nil, domain.GridResult{}, err
	}
	return track, res, nil
}

// Load returns everything needed to draw one balloon against the wind. A
// forecast failure is reported in MapData.ForecastError instead of failing
// the call, so the track still renders.
func (s *MapService) Load(ctx context.Context, q MapQuery) (*domain.MapData, error) {
	level, ok := domain.LookupPressureLevel(q.PressureHPa)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported pressure level %d hPa", domain.ErrInvalidInput, q.PressureHPa)
	}
	if q.HourIndex < 0 || q.HourIndex > q.Hours {
		return nil, fmt.Errorf("%w: hour_index must be between 0 and %d, got %d", domain.ErrInvalidInput, q.Hours, q.HourIndex)
	}

	track, grid, err := s.Grid(ctx, q.BalloonID, q.Hours, q.N, q.MinSpanDeg)
	if err != nil {
		return nil, err
	}

	data := &domain.MapData{
		Track:     track,
		Grid:      grid,
		Window:    track.Window,
		Pressure:  level,
		HourIndex: q.HourIndex,
	}
	if len(grid.Points) == 0 {
		return data, nil
	}

	series, err := s.forecast.Fetch(ctx, grid.Points, track.Window)
	if err != nil {
		if apiErr, ok := domain.AsAPIError(err); ok {
			data.ForecastError = apiErr
		} else {
			data.ForecastError = domain.NewAPIError(domain.SourceForecastService, 0, "%v", err)
		}
		metrics.ForecastFetchErrors.WithLabelValues(string(data.ForecastError.Source)).Inc()
		return data, nil
	}

	data.Series = series
	data.Vectors = VectorsAt(series, level.HPa, q.HourIndex)
	return data, nil
}
