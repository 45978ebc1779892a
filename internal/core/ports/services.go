package ports

import (
	"context"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// FeedSource returns the balloon snapshot published hoursBack hours ago
// (0 = most recent). A not-yet-published hour is reported as a 404
// *domain.APIError.
type FeedSource interface {
	FetchSnapshot(ctx context.Context, hoursBack int) (domain.Snapshot, error)
}

// ForecastSource queries hourly wind fields for a batch of coordinates.
type ForecastSource interface {
	FetchWind(ctx context.Context, req domain.ForecastRequest) ([]domain.WindSeries, error)
}

// EventPublisher publishes feed events to a message broker.
type EventPublisher interface {
	PublishSnapshot(ctx context.Context, event *domain.SnapshotEvent) error
	PublishPosition(ctx context.Context, event *domain.PositionEvent) error
}

// EventSubscriber subscribes to feed events from a message broker.
type EventSubscriber interface {
	SubscribeSnapshots(ctx context.Context, handler func(ctx context.Context, event *domain.SnapshotEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
