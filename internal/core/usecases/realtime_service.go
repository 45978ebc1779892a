package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/ports"
	"github.com/samirrijal/balloonwind/internal/pkg/metrics"
)

// RealtimeService refreshes snapshots straight from upstream, primes the
// feed cache and broadcasts them to live subscribers.
type RealtimeService struct {
	source    ports.FeedSource
	feed      *FeedService
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewRealtimeService creates a new RealtimeService. publisher may be nil, in
// which case Broadcast only counts positions.
func NewRealtimeService(
	source ports.FeedSource,
	feed *FeedService,
	publisher ports.EventPublisher,
	now func() time.Time,
) *RealtimeService {
	if now == nil {
		now = time.Now
	}
	return &RealtimeService{source: source, feed: feed, publisher: publisher, now: now}
}

// Refresh fetches one hour from upstream, bypassing the cache, and stores
// the result for readers. An hour upstream reports as missing is dropped
// from the cache.
func (s *RealtimeService) Refresh(ctx context.Context, hour int) (*domain.SnapshotEvent, error) {
	if err := ValidateHour(hour); err != nil {
		return nil, err
	}
	snap, err := s.source.FetchSnapshot(ctx, hour)
	if err != nil {
		// upstream withdrew the file; stop serving the cached copy
		if domain.IsNotFound(err) && s.feed != nil {
			_ = s.feed.Invalidate(ctx, hour)
		}
		return nil, fmt.Errorf("refresh hour %02d: %w", hour, err)
	}
	if s.feed != nil {
		if err := s.feed.Prime(ctx, hour, snap); err != nil {
			return nil, fmt.Errorf("prime hour %02d: %w", hour, err)
		}
	}
	return &domain.SnapshotEvent{Hour: hour, FetchedAt: s.now().UTC(), Snapshot: snap}, nil
}

// Broadcast publishes the snapshot and, for the current hour, one position
// event per balloon with a complete fix. It returns the number of positions.
func (s *RealtimeService) Broadcast(ctx context.Context, event *domain.SnapshotEvent) (int, error) {
	if s.publisher != nil {
		if err := s.publisher.PublishSnapshot(ctx, event); err != nil {
			return 0, fmt.Errorf("publish snapshot %02d: %w", event.Hour, err)
		}
		metrics.SnapshotsPublished.Inc()
	}
	if event.Hour != 0 {
		return 0, nil
	}

	fixTime := event.FetchedAt.Truncate(time.Hour)
	positions := 0
	for id, raw := range event.Snapshot {
		p, ok := raw.TrackPoint()
		if !ok {
			continue
		}
		positions++
		if s.publisher == nil {
			continue
		}
		err := s.publisher.PublishPosition(ctx, &domain.PositionEvent{
			BalloonID: id,
			Label:     domain.BalloonLabel(id),
			Time:      fixTime,
			Point:     p,
		})
		if err != nil {
			return positions, fmt.Errorf("publish position %d: %w", id, err)
		}
	}
	return positions, nil
}
