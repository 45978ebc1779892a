package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/balloonwind/internal/adapters/openmeteo"
	"github.com/samirrijal/balloonwind/internal/core/domain"
)

func testRequest(points ...domain.GridPoint) domain.ForecastRequest {
	return domain.ForecastRequest{
		Points:    points,
		Variables: []string{"wind_u_component_500hPa", "wind_v_component_500hPa"},
		Window:    domain.WindowEndingAt(time.Date(2025, 6, 1, 12, 20, 0, 0, time.UTC), 1),
	}
}

func TestQuery(t *testing.T) {
	q := openmeteo.Query(testRequest(domain.GridPoint{Lat: 10.5, Lng: 170}, domain.GridPoint{Lat: -12, Lng: -170.25}))

	want := map[string]string{
		"latitude":   "10.5,-12",
		"longitude":  "170,-170.25",
		"hourly":     "wind_u_component_500hPa,wind_v_component_500hPa",
		"start_hour": "2025-06-01T11:00",
		"end_hour":   "2025-06-01T12:00",
		"timezone":   "GMT",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s: expected %q, got %q", k, v, got)
		}
	}
}

func TestClient_MultiLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") != "1,2" {
			t.Errorf("unexpected latitude %q", r.URL.Query().Get("latitude"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"latitude": 1.0, "longitude": 3.0, "elevation": 12, "utc_offset_seconds": 0,
			 "hourly": {"time": ["2025-06-01T11:00", "2025-06-01T12:00"],
			            "wind_u_component_500hPa": [1.5, null],
			            "wind_v_component_500hPa": [2.5, 3.5]}},
			{"latitude": 2.0, "longitude": 4.0, "elevation": 0, "utc_offset_seconds": 0,
			 "hourly": {"time": ["2025-06-01T11:00", "2025-06-01T12:00"],
			            "wind_u_component_500hPa": [0, 0]}}
		]`))
	}))
	defer srv.Close()

	c := openmeteo.NewClientWithHTTP(srv.URL, srv.Client())
	series, err := c.FetchWind(context.Background(), testRequest(domain.GridPoint{Lat: 1, Lng: 3}, domain.GridPoint{Lat: 2, Lng: 4}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}

	first := series[0]
	if first.Elevation != 12 || len(first.Times) != 2 {
		t.Errorf("unexpected first series %+v", first)
	}
	if !first.Times[1].Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected time %v", first.Times[1])
	}
	u, _ := first.Series("wind_u_component_500hPa")
	if len(u) != 2 || u[0] == nil || *u[0] != 1.5 || u[1] != nil {
		t.Errorf("unexpected u series %v", u)
	}

	v, ok := series[1].Series("wind_v_component_500hPa")
	if !ok || v != nil {
		t.Errorf("expected an absent variable to decode as nil, got %v", v)
	}
}

func TestClient_SingleLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": 52.5, "longitude": 13.4, "utc_offset_seconds": 0,
			"hourly": {"time": ["2025-06-01T11:00"], "wind_u_component_500hPa": [4], "wind_v_component_500hPa": [-3]}}`))
	}))
	defer srv.Close()

	c := openmeteo.NewClientWithHTTP(srv.URL, srv.Client())
	series, err := c.FetchWind(context.Background(), testRequest(domain.GridPoint{Lat: 52.5, Lng: 13.4}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].Lat != 52.5 {
		t.Fatalf("unexpected series %+v", series)
	}
}

func TestClient_ErrorReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": true, "reason": "Latitude must be in range of -90 to 90°."}`))
	}))
	defer srv.Close()

	c := openmeteo.NewClientWithHTTP(srv.URL, srv.Client())
	_, err := c.FetchWind(context.Background(), testRequest(domain.GridPoint{Lat: 95, Lng: 0}))
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Source != domain.SourceForecastService || apiErr.Status != http.StatusBadRequest {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if apiErr.Message != "Latitude must be in range of -90 to 90°." {
		t.Errorf("unexpected reason %q", apiErr.Message)
	}
}

func TestClient_LocationCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"latitude": 1, "longitude": 1, "hourly": {}}]`))
	}))
	defer srv.Close()

	c := openmeteo.NewClientWithHTTP(srv.URL, srv.Client())
	_, err := c.FetchWind(context.Background(), testRequest(domain.GridPoint{Lat: 1, Lng: 1}, domain.GridPoint{Lat: 2, Lng: 2}))
	if _, ok := domain.AsAPIError(err); !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := openmeteo.NewClientWithHTTP(url, &http.Client{})
	_, err := c.FetchWind(context.Background(), testRequest(domain.GridPoint{Lat: 1, Lng: 1}))
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Source != domain.SourceNetwork {
		t.Fatalf("expected network APIError, got %v", err)
	}
}
