package geospatial

import (
	"math"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// EquirectGrid samples an n×n lat/lon grid over a padded bounding box,
// row-major by latitude then longitude. Both axes are widened to at least
// minSpanDeg, centred on the midpoint of the axis, before padding so a
// stationary balloon still gets distinct sample points. Latitudes are clamped to [-90, 90]. Longitudes are stepped
// along the wrapped arc, so a box that straddles the antimeridian produces
// points on both sides of it.
func EquirectGrid(box domain.BoundingBox, n int, padFraction, minSpanDeg float64) []domain.GridPoint {
	if n < 1 {
		return nil
	}

	minLat, maxLat := paddedRange(box.MinLat, box.MaxLat, minSpanDeg, padFraction)
	minLat, maxLat = math.Max(minLat, -90), math.Min(maxLat, 90)

	start360 := LonTo360(box.MinLon)
	minLon360, maxLon360 := paddedRange(start360, start360+box.LonWidthDeg, minSpanDeg, padFraction)
	width360 := maxLon360 - minLon360

	grid := make([]domain.GridPoint, 0, n*n)
	for i := 0; i < n; i++ {
		lat := minLat + step(i, n)*(maxLat-minLat)
		for j := 0; j < n; j++ {
			lon360 := minLon360 + step(j, n)*width360
			grid = append(grid, domain.GridPoint{Lat: lat, Lng: NormalizeLon(lon360)})
		}
	}
	return grid
}

// paddedRange widens [lo, hi] to at least minSpan around its midpoint, then
// extends each side by pad times that span.
func paddedRange(lo, hi, minSpan, pad float64) (float64, float64) {
	span := math.Max(hi-lo, minSpan)
	mid := (lo + hi) / 2
	half := span/2 + span*pad
	return mid - half, mid + half
}

// step is the normalized position of sample i out of n. A single sample sits
// in the middle of the range.
func step(i, n int) float64 {
	if n == 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}
