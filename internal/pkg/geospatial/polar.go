package geospatial

import (
	"math"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// PolarGrid builds an n×n grid on an azimuthal-equidistant plane centered on
// the pole nearest the path, then inverse-projects it. Near a pole a lat/lon
// grid degenerates as meridians converge; a planar grid keeps cells similar
// in size. The north pole is used when the mean latitude exceeds
// northMeanLat, the south pole otherwise.
func PolarGrid(path []domain.TrackPoint, n int, padFactor, minSpanMeters, northMeanLat float64) []domain.GridPoint {
	if len(path) == 0 || n < 1 {
		return nil
	}

	var sumLat float64
	for _, p := range path {
		sumLat += p.Lat
	}
	centerLat := -90.0
	if sumLat/float64(len(path)) > northMeanLat {
		centerLat = 90.0
	}
	// A pole has no longitude; 0 fixes the orientation of the plane.
	const centerLon = 0.0

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range path {
		pt := AzimuthalForward(p.Lat, p.Lng, centerLat, centerLon)
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}

	// Spans below minSpanMeters grow around their midpoint; padFactor then
	// scales the whole span, so each side gets half the excess.
	pad := 0.5 * (padFactor - 1)
	minX, maxX = paddedRange(minX, maxX, minSpanMeters, pad)
	minY, maxY = paddedRange(minY, maxY, minSpanMeters, pad)
	spanX, spanY := maxX-minX, maxY-minY

	grid := make([]domain.GridPoint, 0, n*n)
	for i := 0; i < n; i++ {
		y := minY + step(i, n)*spanY
		for j := 0; j < n; j++ {
			x := minX + step(j, n)*spanX
			grid = append(grid, AzimuthalInverse(x, y, centerLat, centerLon))
		}
	}
	return grid
}
