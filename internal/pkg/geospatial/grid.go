package geospatial

import "github.com/samirrijal/balloonwind/internal/core/domain"

const (
	DefaultResolution = 5
	DefaultMinSpanDeg = 0.01

	// MetersPerDegree approximates one degree of arc on the ground.
	MetersPerDegree = 111000.0
)

// Options tunes the grid dispatcher. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	// Paths reaching this absolute latitude use the polar generator.
	PolarThresholdDeg float64
	// Mean latitude above which the north pole is the projection center.
	NorthMeanLatDeg float64
	EquirectPad     float64
	PolarPadFactor  float64
}

// DefaultOptions returns the tuned thresholds.
func DefaultOptions() Options {
	return Options{
		PolarThresholdDeg: 85,
		NorthMeanLatDeg:   60,
		EquirectPad:       0.1,
		PolarPadFactor:    1.2,
	}
}

// ChooseStrategy picks the grid generator for a bounding box.
func (o Options) ChooseStrategy(box domain.BoundingBox) domain.GridStrategy {
	if box.MaxLat >= o.PolarThresholdDeg || box.MinLat <= -o.PolarThresholdDeg {
		return domain.StrategyPolarAzimuthal
	}
	return domain.StrategyEquirectangular
}

// Generate builds the wind-sampling grid for a path. An empty path yields an
// empty result rather than an error.
func (o Options) Generate(path []domain.TrackPoint, n int, minSpanDeg float64) domain.GridResult {
	box, ok := WrappedBBox(path)
	if !ok {
		return domain.GridResult{Points: []domain.GridPoint{}}
	}

	res := domain.GridResult{BBox: box, Strategy: o.ChooseStrategy(box)}
	switch res.Strategy {
	case domain.StrategyPolarAzimuthal:
		res.Points = PolarGrid(path, n, o.PolarPadFactor, minSpanDeg*MetersPerDegree, o.NorthMeanLatDeg)
	default:
		res.Points = EquirectGrid(box, n, o.EquirectPad, minSpanDeg)
	}
	if res.Points == nil {
		res.Points = []domain.GridPoint{}
	}
	return res
}

// GenerateGridFromPath is Generate with the default options, returning only
// the points.
func GenerateGridFromPath(path []domain.TrackPoint, n int, minSpanDeg float64) []domain.GridPoint {
	return DefaultOptions().Generate(path, n, minSpanDeg).Points
}
