package usecases

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/ports"
	"github.com/samirrijal/balloonwind/internal/pkg/geospatial"
)

// maxConcurrentFetches bounds parallel upstream requests per track.
const maxConcurrentFetches = 6

// TrackService assembles balloon flight paths from hourly snapshots.
type TrackService struct {
	feed      ports.FeedSource
	fleetSize int
	now       func() time.Time
}

// NewTrackService creates a new TrackService. now defaults to time.Now.
func NewTrackService(feed ports.FeedSource, fleetSize int, now func() time.Time) *TrackService {
	if fleetSize <= 0 {
		fleetSize = domain.FleetSize
	}
	if now == nil {
		now = time.Now
	}
	return &TrackService{feed: feed, fleetSize: fleetSize, now: now}
}

// FleetSize is the number of balloon slots the service accepts.
func (s *TrackService) FleetSize() int { return s.fleetSize }

// ValidateBalloonID checks an id against the fleet size.
func (s *TrackService) ValidateBalloonID(id int) error {
	if id < 0 || id >= s.fleetSize {
		return fmt.Errorf("%w: balloon id must be between 0 and %d, got %d", domain.ErrInvalidInput, s.fleetSize-1, id)
	}
	return nil
}

// Track returns the chronological path of one balloon over the last hours
// hours, plus the current one.
func (s *TrackService) Track(ctx context.Context, balloonID, hours int) (*domain.Track, error) {
	if err := s.ValidateBalloonID(balloonID); err != nil {
		return nil, err
	}
	if err := ValidateHour(hours); err != nil {
		return nil, err
	}

	snaps, err := s.fetchAll(ctx, hours)
	if err != nil {
		return nil, err
	}

	window := domain.WindowEndingAt(s.now(), hours)
	track := &domain.Track{
		BalloonID: balloonID,
		Label:     domain.BalloonLabel(balloonID),
		Hours:     hours,
		Window:    window,
		Points:    make([]domain.TrackPoint, 0, hours+1),
		Times:     make([]time.Time, 0, hours+1),
	}

	// snaps[h] is h hours back; walk oldest first.
	for h := hours; h >= 0; h-- {
		p, ok := snaps[h].Point(balloonID).TrackPoint()
		if !ok {
			track.Missing++
			continue
		}
		track.Points = append(track.Points, p)
		track.Times = append(track.Times, window.End.Add(-time.Duration(h)*time.Hour))
	}
	track.DistanceKm = geospatial.PathLengthKm(track.Points)

	return track, nil
}

func (s *TrackService) fetchAll(ctx context.Context, hours int) ([]domain.Snapshot, error) {
	snaps := make([]domain.Snapshot, hours+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for h := 0; h <= hours; h++ {
		g.Go(func() error {
			snap, err := s.feed.FetchSnapshot(gctx, h)
			if err != nil {
				// The current hour may not be published yet.
				if h == 0 && domain.IsNotFound(err) {
					snaps[h] = domain.NullSnapshot(s.fleetSize)
					return nil
				}
				return fmt.Errorf("fetch snapshot %02d: %w", h, err)
			}
			snaps[h] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}
