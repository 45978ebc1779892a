package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/pkg/geospatial"
)

func pt(lat, lng float64) domain.TrackPoint {
	return domain.TrackPoint{Lat: lat, Lng: lng, Alt: 1}
}

// lonDiff is the signed shortest angular difference a-b in degrees.
func lonDiff(a, b float64) float64 {
	return geospatial.NormalizeLon(a - b)
}

func TestWrappedBBox_Empty(t *testing.T) {
	if _, ok := geospatial.WrappedBBox(nil); ok {
		t.Fatal("expected empty result for empty path")
	}
}

func TestWrappedBBox_Antimeridian(t *testing.T) {
	box, ok := geospatial.WrappedBBox([]domain.TrackPoint{pt(0, 179), pt(1, -179)})
	if !ok {
		t.Fatal("expected a bounding box")
	}
	if math.Abs(box.LonWidthDeg-2) > 1e-9 {
		t.Errorf("expected width 2, got %v", box.LonWidthDeg)
	}
	if math.Abs(box.MinLon-179) > 1e-9 || math.Abs(box.MaxLon+179) > 1e-9 {
		t.Errorf("expected 179..-179, got %v..%v", box.MinLon, box.MaxLon)
	}
	if !box.CrossesAntimeridian() {
		t.Error("expected box to cross the antimeridian")
	}
}

func TestWrappedBBox_NoWrap(t *testing.T) {
	box, _ := geospatial.WrappedBBox([]domain.TrackPoint{pt(-5, -10), pt(3, 20), pt(7, 5)})
	if math.Abs(box.LonWidthDeg-30) > 1e-9 {
		t.Errorf("expected width 30, got %v", box.LonWidthDeg)
	}
	if box.MinLon != -10 || box.MaxLon != 20 {
		t.Errorf("expected -10..20, got %v..%v", box.MinLon, box.MaxLon)
	}
	if box.MinLat != -5 || box.MaxLat != 7 {
		t.Errorf("expected lat -5..7, got %v..%v", box.MinLat, box.MaxLat)
	}
	if box.CrossesAntimeridian() {
		t.Error("box should not cross the antimeridian")
	}
}

func TestWrappedBBox_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		path []domain.TrackPoint
	}{
		{"single point", []domain.TrackPoint{pt(12, 34)}},
		{"identical points", []domain.TrackPoint{pt(12, 34), pt(12, 34), pt(12, 34)}},
		{"identical longitudes", []domain.TrackPoint{pt(10, 34), pt(12, 34)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, ok := geospatial.WrappedBBox(tt.path)
			if !ok {
				t.Fatal("expected a bounding box")
			}
			if box.LonWidthDeg != 0 {
				t.Errorf("expected width 0, got %v", box.LonWidthDeg)
			}
			if box.MinLon != 34 || box.MaxLon != 34 {
				t.Errorf("expected lon 34, got %v..%v", box.MinLon, box.MaxLon)
			}
		})
	}
}

func TestWrappedBBox_DatelineLongitudeNormalized(t *testing.T) {
	box, _ := geospatial.WrappedBBox([]domain.TrackPoint{pt(0, 180)})
	if box.MinLon != -180 {
		t.Errorf("expected 180 to normalize to -180, got %v", box.MinLon)
	}
}

func TestGenerateGridFromPath_PointCount(t *testing.T) {
	paths := map[string][]domain.TrackPoint{
		"mid latitudes": {pt(40, -100), pt(41, -98), pt(42.5, -95)},
		"antimeridian":  {pt(10, 170), pt(12, -170)},
		"north pole":    {pt(88, 10), pt(89, 120)},
		"south pole":    {pt(-86, -40), pt(-87, 60)},
		"single point":  {pt(45, 10)},
	}
	for name, path := range paths {
		for _, n := range []int{1, 2, 3, 5, 8} {
			got := geospatial.GenerateGridFromPath(path, n, geospatial.DefaultMinSpanDeg)
			if len(got) != n*n {
				t.Errorf("%s n=%d: expected %d points, got %d", name, n, n*n, len(got))
			}
		}
	}
}

func TestGenerateGridFromPath_Empty(t *testing.T) {
	got := geospatial.GenerateGridFromPath(nil, 5, 0.01)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil grid, got %v", got)
	}
	if len(geospatial.GenerateGridFromPath([]domain.TrackPoint{pt(1, 1)}, 0, 0.01)) != 0 {
		t.Error("expected no points for n=0")
	}
}

func TestGenerateGridFromPath_AntimeridianBand(t *testing.T) {
	grid := geospatial.GenerateGridFromPath([]domain.TrackPoint{pt(10, 179), pt(11, -179)}, 5, 0.01)
	// 2° wide plus 10% padding on each side.
	for _, g := range grid {
		if math.Abs(lonDiff(g.Lng, 180)) > 1.2+1e-9 {
			t.Errorf("point %v outside the band around 180", g)
		}
		if g.Lng < -180 || g.Lng >= 180 {
			t.Errorf("longitude %v not normalized", g.Lng)
		}
	}
}

func TestGenerate_AntimeridianScenario(t *testing.T) {
	res := geospatial.DefaultOptions().Generate([]domain.TrackPoint{pt(10, 170), pt(12, -170)}, 5, 0.01)

	if res.Strategy != domain.StrategyEquirectangular {
		t.Errorf("expected equirectangular, got %s", res.Strategy)
	}
	if math.Abs(res.BBox.LonWidthDeg-20) > 1e-9 {
		t.Errorf("expected width 20, got %v", res.BBox.LonWidthDeg)
	}
	if res.BBox.MinLat != 10 || res.BBox.MaxLat != 12 {
		t.Errorf("expected lat 10..12, got %v..%v", res.BBox.MinLat, res.BBox.MaxLat)
	}
	if len(res.Points) != 25 {
		t.Fatalf("expected 25 points, got %d", len(res.Points))
	}
	var sawEast, sawWest bool
	for _, g := range res.Points {
		if math.Abs(lonDiff(g.Lng, 180)) > 12+1e-9 {
			t.Errorf("point %v outside the band around the antimeridian", g)
		}
		if g.Lng > 0 {
			sawEast = true
		} else {
			sawWest = true
		}
	}
	if !sawEast || !sawWest {
		t.Error("expected grid points on both sides of the antimeridian")
	}

	first, last := res.Points[0], res.Points[24]
	if math.Abs(first.Lat-9.8) > 1e-9 || math.Abs(last.Lat-12.2) > 1e-9 {
		t.Errorf("expected padded lat 9.8..12.2, got %v..%v", first.Lat, last.Lat)
	}
	if math.Abs(first.Lng-168) > 1e-9 || math.Abs(last.Lng+168) > 1e-9 {
		t.Errorf("expected padded lon 168..-168, got %v..%v", first.Lng, last.Lng)
	}
}

func TestChooseStrategy_PoleThreshold(t *testing.T) {
	opts := geospatial.DefaultOptions()
	tests := []struct {
		name string
		path []domain.TrackPoint
		want domain.GridStrategy
	}{
		{"max 86", []domain.TrackPoint{pt(80, 0), pt(86, 10)}, domain.StrategyPolarAzimuthal},
		{"max 84", []domain.TrackPoint{pt(80, 0), pt(84, 10)}, domain.StrategyEquirectangular},
		{"exactly 85", []domain.TrackPoint{pt(85, 0)}, domain.StrategyPolarAzimuthal},
		{"min -86", []domain.TrackPoint{pt(-86, 0), pt(-70, 10)}, domain.StrategyPolarAzimuthal},
		{"min -84", []domain.TrackPoint{pt(-84, 0), pt(-70, 10)}, domain.StrategyEquirectangular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := opts.Generate(tt.path, 5, 0.01)
			if res.Strategy != tt.want {
				t.Errorf("expected %s, got %s", tt.want, res.Strategy)
			}
		})
	}
}

func TestChooseStrategy_CustomThreshold(t *testing.T) {
	opts := geospatial.DefaultOptions()
	opts.PolarThresholdDeg = 80
	box := domain.BoundingBox{MinLat: 70, MaxLat: 82}
	if got := opts.ChooseStrategy(box); got != domain.StrategyPolarAzimuthal {
		t.Errorf("expected polar with lowered threshold, got %s", got)
	}
}

func TestGenerateGridFromPath_DegeneratePath(t *testing.T) {
	for _, path := range [][]domain.TrackPoint{
		{pt(45, 10)},
		{pt(45, 10), pt(45, 10), pt(45, 10)},
	} {
		grid := geospatial.GenerateGridFromPath(path, 5, 0.01)
		if len(grid) != 25 {
			t.Fatalf("expected 25 points, got %d", len(grid))
		}
		// min span 0.01 padded by 10% on each side
		const radius = 0.006 + 1e-9
		for _, g := range grid {
			if math.IsNaN(g.Lat) || math.IsNaN(g.Lng) {
				t.Fatalf("NaN in grid: %v", g)
			}
			if math.Abs(g.Lat-45) > radius || math.Abs(lonDiff(g.Lng, 10)) > radius {
				t.Errorf("point %v outside min-span neighborhood", g)
			}
		}
		if grid[0] == grid[24] {
			t.Error("expected distinct corner points")
		}
	}
}

func TestGenerateGridFromPath_DegenerateNearPole(t *testing.T) {
	grid := geospatial.GenerateGridFromPath([]domain.TrackPoint{pt(88, 40)}, 5, 0.01)
	if len(grid) != 25 {
		t.Fatalf("expected 25 points, got %d", len(grid))
	}
	for _, g := range grid {
		if math.IsNaN(g.Lat) || math.IsNaN(g.Lng) {
			t.Fatalf("NaN in grid: %v", g)
		}
		d := geospatial.Haversine(88, 40, g.Lat, g.Lng)
		if d > 0.01*geospatial.MetersPerDegree {
			t.Errorf("point %v is %.0f m from the balloon", g, d)
		}
	}
}

func TestGenerate_NorthPoleScenario(t *testing.T) {
	res := geospatial.DefaultOptions().Generate([]domain.TrackPoint{pt(89, 0), pt(89.5, 90)}, 5, 0.01)
	if res.Strategy != domain.StrategyPolarAzimuthal {
		t.Fatalf("expected polar strategy, got %s", res.Strategy)
	}
	if len(res.Points) != 25 {
		t.Fatalf("expected 25 points, got %d", len(res.Points))
	}
	for _, g := range res.Points {
		if math.IsNaN(g.Lat) || math.IsNaN(g.Lng) || math.IsInf(g.Lng, 0) {
			t.Fatalf("non-finite point %v", g)
		}
		if g.Lat < 85 {
			t.Errorf("expected lat >= 85, got %v", g.Lat)
		}
	}
}

func TestGenerate_SouthPoleScenario(t *testing.T) {
	res := geospatial.DefaultOptions().Generate([]domain.TrackPoint{pt(-88, -30), pt(-87.5, 60)}, 4, 0.01)
	if res.Strategy != domain.StrategyPolarAzimuthal {
		t.Fatalf("expected polar strategy, got %s", res.Strategy)
	}
	for _, g := range res.Points {
		if g.Lat > -85 {
			t.Errorf("expected lat <= -85, got %v", g.Lat)
		}
	}
}

func TestEquirectGrid_ClampsLatitude(t *testing.T) {
	box := domain.BoundingBox{MinLat: -80, MaxLat: 84, MinLon: 0, MaxLon: 10, LonWidthDeg: 10}
	for _, g := range geospatial.EquirectGrid(box, 5, 0.1, 0.01) {
		if g.Lat < -90 || g.Lat > 90 {
			t.Errorf("latitude %v out of range", g.Lat)
		}
	}
}

func TestEquirectGrid_RowMajor(t *testing.T) {
	box := domain.BoundingBox{MinLat: 0, MaxLat: 10, MinLon: 0, MaxLon: 10, LonWidthDeg: 10}
	grid := geospatial.EquirectGrid(box, 3, 0, 0.01)
	want := []domain.GridPoint{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 5}, {Lat: 0, Lng: 10},
		{Lat: 5, Lng: 0}, {Lat: 5, Lng: 5}, {Lat: 5, Lng: 10},
		{Lat: 10, Lng: 0}, {Lat: 10, Lng: 5}, {Lat: 10, Lng: 10},
	}
	for i, g := range grid {
		if math.Abs(g.Lat-want[i].Lat) > 1e-9 || math.Abs(g.Lng-want[i].Lng) > 1e-9 {
			t.Errorf("point %d: expected %v, got %v", i, want[i], g)
		}
	}
}

func TestPathLengthKm(t *testing.T) {
	got := geospatial.PathLengthKm([]domain.TrackPoint{pt(0, 0), pt(0, 1), pt(0, 2)})
	if math.Abs(got-222.39) > 0.01 {
		t.Errorf("expected ~222.39 km, got %v", got)
	}
	if geospatial.PathLengthKm([]domain.TrackPoint{pt(0, 0)}) != 0 {
		t.Error("single point should have zero length")
	}
}

func TestEquirectGrid_MinSpanCentred(t *testing.T) {
	box := domain.BoundingBox{MinLat: 10, MaxLat: 10, MinLon: 20, MaxLon: 20}

	grid := geospatial.EquirectGrid(box, 3, 0, 1)
	if len(grid) != 9 {
		t.Fatalf("expected 9 points, got %d", len(grid))
	}
	wantLat := []float64{9.5, 10, 10.5}
	wantLng := []float64{19.5, 20, 20.5}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p := grid[i*3+j]
			if math.Abs(p.Lat-wantLat[i]) > 1e-9 || math.Abs(p.Lng-wantLng[j]) > 1e-9 {
				t.Errorf("point (%d,%d): expected %v,%v got %v,%v", i, j, wantLat[i], wantLng[j], p.Lat, p.Lng)
			}
		}
	}
}
