package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/balloonwind/internal/pkg/geospatial"
)

func TestAzimuthal_RoundTrip(t *testing.T) {
	centers := [][2]float64{{90, 0}, {-90, 0}, {40, -100}, {0, 0}, {-33.9, 151.2}}
	points := [][2]float64{
		{89, 0}, {80, 45}, {70, -120}, {60, 179}, {10, 10},
		{-10, -60}, {-75, 100}, {45.5, -99.5}, {0.001, 0.001},
	}

	for _, c := range centers {
		for _, p := range points {
			// skip near-antipodal pairs where the projection is undefined
			if geospatial.Haversine(c[0], c[1], p[0], p[1]) > 0.95*math.Pi*geospatial.EarthRadiusM {
				continue
			}
			xy := geospatial.AzimuthalForward(p[0], p[1], c[0], c[1])
			got := geospatial.AzimuthalInverse(xy.X, xy.Y, c[0], c[1])

			if math.Abs(got.Lat-p[0]) > 1e-6 {
				t.Errorf("center %v point %v: lat %v", c, p, got.Lat)
			}
			if math.Abs(lonDiff(got.Lng, p[1])) > 1e-6 {
				t.Errorf("center %v point %v: lng %v", c, p, got.Lng)
			}
		}
	}
}

func TestAzimuthalForward_Equidistant(t *testing.T) {
	cLat, cLon := 52.0, 13.0
	for _, p := range [][2]float64{{53, 14}, {40, -3}, {-20, 100}} {
		xy := geospatial.AzimuthalForward(p[0], p[1], cLat, cLon)
		planar := math.Hypot(xy.X, xy.Y)
		ground := geospatial.Haversine(cLat, cLon, p[0], p[1])
		if math.Abs(planar-ground)/ground > 1e-9 {
			t.Errorf("point %v: planar %.3f m, ground %.3f m", p, planar, ground)
		}
	}
}

func TestAzimuthal_DegenerateCenter(t *testing.T) {
	xy := geospatial.AzimuthalForward(12.5, -40, 12.5, -40)
	if xy.X != 0 || xy.Y != 0 {
		t.Errorf("expected origin, got %+v", xy)
	}

	ll := geospatial.AzimuthalInverse(0, 0, 90, 0)
	if ll.Lat != 90 || ll.Lng != 0 {
		t.Errorf("expected the center, got %+v", ll)
	}
}

func TestAzimuthalForward_NorthPoleOrientation(t *testing.T) {
	// one degree from the pole along the prime meridian lies on -y
	xy := geospatial.AzimuthalForward(89, 0, 90, 0)
	want := geospatial.EarthRadiusM * math.Pi / 180
	if math.Abs(xy.X) > 1e-6 || math.Abs(xy.Y+want) > 1e-3 {
		t.Errorf("expected (0, %.3f), got %+v", -want, xy)
	}
}
