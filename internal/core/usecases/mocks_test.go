package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// --- Mock FeedSource ---

type mockFeed struct {
	fetchFn func(ctx context.Context, hoursBack int) (domain.Snapshot, error)

	mu    sync.Mutex
	calls []int
}

func (m *mockFeed) FetchSnapshot(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, hoursBack)
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, hoursBack)
	}
	return domain.NullSnapshot(domain.FleetSize), nil
}

func (m *mockFeed) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- Mock ForecastSource ---

type mockForecast struct {
	fetchFn func(ctx context.Context, req domain.ForecastRequest) ([]domain.WindSeries, error)
	calls   int
}

func (m *mockForecast) FetchWind(ctx context.Context, req domain.ForecastRequest) ([]domain.WindSeries, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, req)
	}
	return nil, nil
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// snapshotWith returns a fleet-sized snapshot with one populated slot.
func snapshotWith(id int, lat, lon, alt float64) domain.Snapshot {
	snap := domain.NullSnapshot(domain.FleetSize)
	snap[id] = domain.NewRawPoint(lat, lon, alt)
	return snap
}

func ptr(v float64) *float64 { return &v }

// --- Mock EventPublisher ---

type mockPublisher struct {
	snapshots  []*domain.SnapshotEvent
	positions  []*domain.PositionEvent
	positionFn func(ctx context.Context, event *domain.PositionEvent) error
}

func (m *mockPublisher) PublishSnapshot(ctx context.Context, event *domain.SnapshotEvent) error {
	m.snapshots = append(m.snapshots, event)
	return nil
}

func (m *mockPublisher) PublishPosition(ctx context.Context, event *domain.PositionEvent) error {
	if m.positionFn != nil {
		if err := m.positionFn(ctx, event); err != nil {
			return err
		}
	}
	m.positions = append(m.positions, event)
	return nil
}
