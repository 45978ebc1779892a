package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/usecases"
)

var fixedNow = time.Date(2025, 6, 1, 12, 34, 56, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestTrackService_ChronologicalOrder(t *testing.T) {
	feed := &mockFeed{
		fetchFn: func(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
			// latitude encodes the hour so order is observable
			return snapshotWith(42, float64(hoursBack), 0, 1000), nil
		},
	}
	svc := usecases.NewTrackService(feed, domain.FleetSize, clock)

	track, err := svc.Track(context.Background(), 42, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(track.Points))
	}
	for i, want := range []float64{3, 2, 1, 0} {
		if track.Points[i].Lat != want {
			t.Errorf("point %d: expected lat %v, got %v", i, want, track.Points[i].Lat)
		}
	}

	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !track.Window.End.Equal(end) {
		t.Errorf("expected window end %v, got %v", end, track.Window.End)
	}
	if !track.Times[0].Equal(end.Add(-3*time.Hour)) || !track.Times[3].Equal(end) {
		t.Errorf("unexpected times %v", track.Times)
	}
	if track.Label != "Balloon 042" {
		t.Errorf("expected label 'Balloon 042', got %q", track.Label)
	}
	// three one-degree legs along a meridian
	if math.Abs(track.DistanceKm-3*111.195) > 0.01 {
		t.Errorf("expected ~333.585 km, got %v", track.DistanceKm)
	}
}

func TestTrackService_CurrentHourNotPublished(t *testing.T) {
	feed := &mockFeed{
		fetchFn: func(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
			if hoursBack == 0 {
				return nil, domain.NewAPIError(domain.SourceUpstreamFeed, 404, "00.json not found")
			}
			return snapshotWith(5, 10, 10, 1000), nil
		},
	}
	svc := usecases.NewTrackService(feed, domain.FleetSize, clock)

	track, err := svc.Track(context.Background(), 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track.Points) != 2 {
		t.Errorf("expected 2 points, got %d", len(track.Points))
	}
	if track.Missing != 1 {
		t.Errorf("expected 1 missing, got %d", track.Missing)
	}
}

func TestTrackService_OlderNotFoundFails(t *testing.T) {
	feed := &mockFeed{
		fetchFn: func(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
			if hoursBack == 2 {
				return nil, domain.NewAPIError(domain.SourceUpstreamFeed, 404, "02.json not found")
			}
			return snapshotWith(5, 10, 10, 1000), nil
		},
	}
	svc := usecases.NewTrackService(feed, domain.FleetSize, clock)

	_, err := svc.Track(context.Background(), 5, 3)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not-found APIError, got %v", err)
	}
}

func TestTrackService_NetworkError(t *testing.T) {
	feed := &mockFeed{
		fetchFn: func(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
			return nil, domain.NewAPIError(domain.SourceNetwork, 0, "connection refused")
		},
	}
	svc := usecases.NewTrackService(feed, domain.FleetSize, clock)

	_, err := svc.Track(context.Background(), 5, 0)
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Source != domain.SourceNetwork {
		t.Fatalf("expected network APIError, got %v", err)
	}
}

func TestTrackService_SkipsPartialTriples(t *testing.T) {
	feed := &mockFeed{
		fetchFn: func(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
			snap := snapshotWith(9, 1, 2, 3)
			if hoursBack == 1 {
				snap[9] = domain.RawPoint{ptr(1), nil, ptr(3)}
			}
			return snap, nil
		},
	}
	svc := usecases.NewTrackService(feed, domain.FleetSize, clock)

	track, err := svc.Track(context.Background(), 9, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track.Points) != 2 || track.Missing != 1 {
		t.Errorf("expected 2 points and 1 missing, got %d and %d", len(track.Points), track.Missing)
	}
	if !track.Times[0].Equal(track.Window.Start) {
		t.Errorf("expected first time at window start, got %v", track.Times[0])
	}
}

func TestTrackService_Validation(t *testing.T) {
	feed := &mockFeed{}
	svc := usecases.NewTrackService(feed, 10, clock)

	cases := []struct {
		name      string
		id, hours int
	}{
		{"negative id", -1, 1},
		{"id past fleet", 10, 1},
		{"negative hours", 0, -1},
		{"too many hours", 0, 24},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Track(context.Background(), tc.id, tc.hours)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if feed.callCount() != 0 {
		t.Errorf("expected no upstream calls, got %d", feed.callCount())
	}
}

func TestTrackService_ShortSnapshot(t *testing.T) {
	feed := &mockFeed{
		fetchFn: func(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
			return domain.Snapshot{domain.NewRawPoint(1, 1, 1)}, nil
		},
	}
	svc := usecases.NewTrackService(feed, domain.FleetSize, clock)

	track, err := svc.Track(context.Background(), 500, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track.Points) != 0 || track.Missing != 2 {
		t.Errorf("expected an empty track with 2 missing, got %+v", track)
	}
}
