package windborne_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samirrijal/balloonwind/internal/adapters/windborne"
	"github.com/samirrijal/balloonwind/internal/core/domain"
)

func TestClient_FetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/treasure/07.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[10.5, -20.25, 14000.1], [null, 3, 4], [1, 2, 3]]`))
	}))
	defer srv.Close()

	c := windborne.NewClientWithHTTP(srv.URL+"/treasure/", srv.Client())
	snap, err := c.FetchSnapshot(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(snap))
	}
	p, ok := snap[0].TrackPoint()
	if !ok || p.Lat != 10.5 || p.Lng != -20.25 || p.Alt != 14000.1 {
		t.Errorf("unexpected first point %+v", p)
	}
	if _, ok := snap[1].TrackPoint(); ok {
		t.Error("expected slot with null latitude to be incomplete")
	}
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := windborne.NewClientWithHTTP(srv.URL, srv.Client())
	_, err := c.FetchSnapshot(context.Background(), 0)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not-found APIError, got %v", err)
	}
	apiErr, _ := domain.AsAPIError(err)
	if apiErr.Source != domain.SourceUpstreamFeed {
		t.Errorf("expected upstream-feed source, got %s", apiErr.Source)
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := windborne.NewClientWithHTTP(srv.URL, srv.Client())
	_, err := c.FetchSnapshot(context.Background(), 2)
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 APIError, got %v", err)
	}
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	}))
	defer srv.Close()

	c := windborne.NewClientWithHTTP(srv.URL, srv.Client())
	_, err := c.FetchSnapshot(context.Background(), 1)
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Source != domain.SourceUpstreamFeed {
		t.Fatalf("expected upstream-feed APIError, got %v", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := windborne.NewClientWithHTTP(url, &http.Client{})
	_, err := c.FetchSnapshot(context.Background(), 0)
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Source != domain.SourceNetwork {
		t.Fatalf("expected network APIError, got %v", err)
	}
}

func TestClient_SnapshotURL(t *testing.T) {
	c := windborne.NewClient("", 0)
	if got := c.SnapshotURL(3); got != windborne.DefaultBaseURL+"/03.json" {
		t.Errorf("unexpected url %s", got)
	}
}
