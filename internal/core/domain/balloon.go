package domain

import (
	"fmt"
	"time"
)

const (
	// FleetSize is the number of balloon slots in every feed snapshot.
	FleetSize = 1000

	// MaxHoursBack is the oldest hourly file the upstream feed keeps.
	MaxHoursBack = 23
)

// RawPoint is one upstream [lat, lon, alt] triple. Any element may be null
// when the balloon slot has no fix for that hour.
type RawPoint [3]*float64

// NewRawPoint builds a fully populated triple.
func NewRawPoint(lat, lon, alt float64) RawPoint {
	return RawPoint{&lat, &lon, &alt}
}

// TrackPoint converts the triple, reporting false if any element is null.
func (p RawPoint) TrackPoint() (TrackPoint, bool) {
	if p[0] == nil || p[1] == nil || p[2] == nil {
		return TrackPoint{}, false
	}
	return TrackPoint{Lat: *p[0], Lng: *p[1], Alt: *p[2]}, true
}

// Snapshot is one hourly feed file, indexed by balloon id.
type Snapshot []RawPoint

// NullSnapshot returns a snapshot of n empty slots. It stands in for the
// current hour while upstream has not published it yet.
func NullSnapshot(n int) Snapshot {
	return make(Snapshot, n)
}

// Point returns the slot for a balloon, or a null triple when out of range.
func (s Snapshot) Point(balloonID int) RawPoint {
	if balloonID < 0 || balloonID >= len(s) {
		return RawPoint{}
	}
	return s[balloonID]
}

// Balloon is a selectable entry of the fleet catalogue.
type Balloon struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// BalloonLabel formats the display name of a balloon id.
func BalloonLabel(id int) string {
	return fmt.Sprintf("Balloon %03d", id)
}

// Track is the chronological flight path of one balloon.
type Track struct {
	BalloonID  int          `json:"balloon_id"`
	Label      string       `json:"label"`
	Hours      int          `json:"hours"`
	Window     Window       `json:"window"`
	Points     []TrackPoint `json:"points"`
	Times      []time.Time  `json:"times"`
	Missing    int          `json:"missing"`
	DistanceKm float64      `json:"distance_km"`
}

// SnapshotEvent is broadcast whenever a fresh snapshot is fetched.
type SnapshotEvent struct {
	Hour      int       `json:"hour"`
	FetchedAt time.Time `json:"fetched_at"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// PositionEvent is the latest fix of a single balloon.
type PositionEvent struct {
	BalloonID int        `json:"balloon_id"`
	Label     string     `json:"label"`
	Time      time.Time  `json:"time"`
	Point     TrackPoint `json:"point"`
}
