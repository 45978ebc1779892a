package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/ports"
	"github.com/samirrijal/balloonwind/internal/pkg/metrics"
)

// DefaultFeedTTLSeconds is the snapshot cache lifetime.
const DefaultFeedTTLSeconds = 10

// FeedService is a read-through cache in front of the upstream balloon feed.
// It satisfies ports.FeedSource itself so it can be handed to TrackService.
type FeedService struct {
	source     ports.FeedSource
	cache      ports.CacheService
	ttlSeconds int
}

// NewFeedService creates a new FeedService. cache may be nil.
func NewFeedService(source ports.FeedSource, cache ports.CacheService, ttlSeconds int) *FeedService {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultFeedTTLSeconds
	}
	return &FeedService{source: source, cache: cache, ttlSeconds: ttlSeconds}
}

func snapshotKey(hour int) string {
	return fmt.Sprintf("feed:snapshot:%02d", hour)
}

// ValidateHour checks an hours-back index against what upstream retains.
func ValidateHour(hour int) error {
	if hour < 0 || hour > domain.MaxHoursBack {
		return fmt.Errorf("%w: hour must be between 0 and %d, got %d", domain.ErrInvalidInput, domain.MaxHoursBack, hour)
	}
	return nil
}

// FetchSnapshot returns the snapshot published hoursBack hours ago.
func (s *FeedService) FetchSnapshot(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
	if err := ValidateHour(hoursBack); err != nil {
		return nil, err
	}

	cacheKey := snapshotKey(hoursBack)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var snap domain.Snapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				metrics.CacheHits.WithLabelValues("feed").Inc()
				return snap, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("feed").Inc()
	}

	snap, err := s.source.FetchSnapshot(ctx, hoursBack)
	if err != nil {
		return nil, err
	}

	s.store(ctx, cacheKey, snap)
	return snap, nil
}

// Prime stores a snapshot fetched elsewhere (poller broadcast, warm
// workflow) so the next request skips upstream.
func (s *FeedService) Prime(ctx context.Context, hour int, snap domain.Snapshot) error {
	if err := ValidateHour(hour); err != nil {
		return err
	}
	s.store(ctx, snapshotKey(hour), snap)
	return nil
}

// Invalidate drops a cached hour.
func (s *FeedService) Invalidate(ctx context.Context, hour int) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, snapshotKey(hour))
}

// TTLSeconds is the cache lifetime, also advertised to HTTP clients.
func (s *FeedService) TTLSeconds() int { return s.ttlSeconds }

func (s *FeedService) store(ctx context.Context, key string, snap domain.Snapshot) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(snap); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttlSeconds)
	}
}
