package geospatial

import (
	"math"
	"sort"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// NormalizeLon maps any longitude into [-180, 180).
func NormalizeLon(lon float64) float64 {
	return math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
}

// LonTo360 maps any longitude into [0, 360).
func LonTo360(lon float64) float64 {
	return math.Mod(math.Mod(lon, 360)+360, 360)
}

// from360 converts a [0,360) longitude back to [-180,180).
func from360(lon360 float64) float64 {
	if lon360 <= 180 {
		return NormalizeLon(lon360)
	}
	return NormalizeLon(lon360 - 360)
}

// WrappedBBox computes the bounding box of a path whose longitude extent is
// the shortest arc covering every point on the circle, so a path straddling
// the antimeridian is a few degrees wide rather than nearly 360.
//
// The arc is the complement of the largest gap between consecutive sorted
// longitudes. ok is false for an empty path.
func WrappedBBox(path []domain.TrackPoint) (box domain.BoundingBox, ok bool) {
	if len(path) == 0 {
		return domain.BoundingBox{}, false
	}

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	lons := make([]float64, len(path))
	for i, p := range path {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		lons[i] = LonTo360(p.Lng)
	}
	sort.Float64s(lons)

	n := len(lons)
	gapIdx, maxGap := 0, -1.0
	for i := 0; i < n; i++ {
		next := lons[(i+1)%n]
		gap := math.Mod(next-lons[i]+360, 360)
		if gap > maxGap {
			maxGap = gap
			gapIdx = i
		}
	}

	arcStart := lons[(gapIdx+1)%n]
	arcEnd := lons[gapIdx]
	width := math.Mod(arcEnd-arcStart+360, 360)

	return domain.BoundingBox{
		MinLat:      minLat,
		MaxLat:      maxLat,
		MinLon:      from360(arcStart),
		MaxLon:      from360(math.Mod(arcStart+width, 360)),
		LonWidthDeg: width,
	}, true
}
