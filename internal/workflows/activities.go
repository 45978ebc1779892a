package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/usecases"
)

// WarmHourResult reports one warmed hour.
type WarmHourResult struct {
	Hour        int
	Fixes       int
	Unpublished bool
}

// FeedActivities holds the activity implementations for the feed warm workflow.
type FeedActivities struct {
	Realtime *usecases.RealtimeService
	Feed     *usecases.FeedService
	Now      func() time.Time
}

// WarmHour refreshes one hourly file from upstream into the cache. An hour
// upstream has not published yet is reported, not failed.
func (a *FeedActivities) WarmHour(ctx context.Context, hour int) (WarmHourResult, error) {
	logger := activity.GetLogger(ctx)

	event, err := a.Realtime.Refresh(ctx, hour)
	if err != nil {
		if domain.IsNotFound(err) {
			logger.Info("hour not published yet", "hour", hour)
			return WarmHourResult{Hour: hour, Unpublished: true}, nil
		}
		if _, ok := domain.AsAPIError(err); !ok {
			// validation errors will not improve on retry
			return WarmHourResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "invalid_input", err)
		}
		return WarmHourResult{}, err
	}

	fixes := 0
	for _, raw := range event.Snapshot {
		if _, ok := raw.TrackPoint(); ok {
			fixes++
		}
	}
	return WarmHourResult{Hour: hour, Fixes: fixes}, nil
}

// PublishLatest broadcasts the cached current hour and returns the number of
// position events sent.
func (a *FeedActivities) PublishLatest(ctx context.Context) (int, error) {
	snap, err := a.Feed.FetchSnapshot(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("read latest snapshot: %w", err)
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	n, err := a.Realtime.Broadcast(ctx, &domain.SnapshotEvent{Hour: 0, FetchedAt: now().UTC(), Snapshot: snap})
	if err != nil {
		return n, err
	}
	activity.GetLogger(ctx).Info("latest positions published", "positions", n)
	return n, nil
}
