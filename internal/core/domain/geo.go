package domain

// TrackPoint is one balloon position sample (WGS 84 degrees, altitude as
// reported by the feed).
type TrackPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
	Alt float64 `json:"alt" yaml:"alt"`
}

// GridPoint is a single coordinate of a wind-sampling grid.
type GridPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// BoundingBox is a lat/lon rectangle whose longitude extent is the minimal
// arc covering all points on the circle. MinLon and MaxLon are in [-180,180);
// when the arc crosses the antimeridian MinLon > MaxLon.
type BoundingBox struct {
	MinLat      float64 `json:"min_lat" yaml:"min_lat"`
	MaxLat      float64 `json:"max_lat" yaml:"max_lat"`
	MinLon      float64 `json:"min_lon" yaml:"min_lon"`
	MaxLon      float64 `json:"max_lon" yaml:"max_lon"`
	LonWidthDeg float64 `json:"lon_width_deg" yaml:"lon_width_deg"`
}

// CrossesAntimeridian reports whether the longitude arc wraps through 180°.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.LonWidthDeg > 0 && b.MinLon > b.MaxLon
}

// GridStrategy names the generator the dispatcher picked.
type GridStrategy string

const (
	StrategyEquirectangular GridStrategy = "equirectangular"
	StrategyPolarAzimuthal  GridStrategy = "polar-azimuthal"
)

// GridResult is a generated sampling grid together with how it was built.
type GridResult struct {
	Strategy GridStrategy `json:"strategy" yaml:"strategy"`
	BBox     BoundingBox  `json:"bbox" yaml:"bbox"`
	Points   []GridPoint  `json:"points" yaml:"points"`
}
