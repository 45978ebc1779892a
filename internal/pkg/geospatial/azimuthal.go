package geospatial

import (
	"math"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// degenerateEps is the angular/planar distance below which a point is treated
// as coinciding with the projection center.
const degenerateEps = 1e-10

// PlanarPoint is a position in meters on the azimuthal plane.
type PlanarPoint struct {
	X float64
	Y float64
}

// AzimuthalForward projects lat/lon onto an azimuthal-equidistant plane
// centered on (centerLat, centerLon). The distance of the result from the
// origin equals the great-circle distance from the center.
func AzimuthalForward(lat, lon, centerLat, centerLon float64) PlanarPoint {
	phi, phi0 := toRad(lat), toRad(centerLat)
	dLambda := toRad(lon - centerLon)

	cosC := math.Sin(phi0)*math.Sin(phi) + math.Cos(phi0)*math.Cos(phi)*math.Cos(dLambda)
	c := math.Acos(math.Max(-1, math.Min(1, cosC)))
	if math.Abs(c) < degenerateEps {
		return PlanarPoint{}
	}

	k := c / math.Sin(c)
	return PlanarPoint{
		X: EarthRadiusM * k * math.Cos(phi) * math.Sin(dLambda),
		Y: EarthRadiusM * k * (math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(dLambda)),
	}
}

// AzimuthalInverse maps a planar point back to lat/lon. The longitude is
// normalized to [-180, 180).
func AzimuthalInverse(x, y, centerLat, centerLon float64) domain.GridPoint {
	rho := math.Hypot(x, y)
	if rho < degenerateEps {
		return domain.GridPoint{Lat: centerLat, Lng: centerLon}
	}

	c := rho / EarthRadiusM
	sinC, cosC := math.Sin(c), math.Cos(c)
	phi0 := toRad(centerLat)
	sinPhi0, cosPhi0 := math.Sin(phi0), math.Cos(phi0)

	phi := math.Asin(math.Max(-1, math.Min(1, cosPhi0*sinC*(y/rho)+sinPhi0*cosC)))
	lambda := toRad(centerLon) + math.Atan2(x*sinC, rho*cosPhi0*cosC-y*sinC*sinPhi0)

	return domain.GridPoint{Lat: toDeg(phi), Lng: NormalizeLon(toDeg(lambda))}
}
