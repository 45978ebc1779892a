// Package windborne reads the public hourly balloon constellation feed.
package windborne

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/pkg/metrics"
	"github.com/samirrijal/balloonwind/internal/pkg/telemetry"
)

// DefaultBaseURL serves {NN}.json, NN hours back from now.
const DefaultBaseURL = "https://a.windbornesystems.com/treasure"

var tracer = otel.Tracer("github.com/samirrijal/balloonwind/internal/adapters/windborne")

// Client fetches hourly snapshots from the upstream feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new feed client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a new feed client with a custom HTTP client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SnapshotURL returns the file URL for an hours-back index.
func (c *Client) SnapshotURL(hoursBack int) string {
	return fmt.Sprintf("%s/%02d.json", c.baseURL, hoursBack)
}

// FetchSnapshot downloads and decodes one hourly file. A missing file is a
// 404 APIError, transport failures are network errors.
func (c *Client) FetchSnapshot(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "windborne.FetchSnapshot", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(telemetry.AttrFeedHoursBack.Int(hoursBack))

	start := time.Now()
	snap, err := c.fetch(ctx, hoursBack)
	metrics.FeedFetchDuration.WithLabelValues(metrics.HourLabel(hoursBack)).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		apiErr, ok := domain.AsAPIError(err)
		if ok {
			span.SetAttributes(telemetry.AttrHTTPStatus.Int(apiErr.Status))
		}
		if ok && !domain.IsNotFound(err) {
			metrics.FeedFetchErrors.WithLabelValues(string(apiErr.Source)).Inc()
		}
		return nil, err
	}
	span.SetAttributes(telemetry.AttrFeedSlots.Int(len(snap)))
	return snap, nil
}

func (c *Client) fetch(ctx context.Context, hoursBack int) (domain.Snapshot, error) {
	url := c.SnapshotURL(hoursBack)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewAPIError(domain.SourceNetwork, 0, "GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewAPIError(domain.SourceUpstreamFeed, resp.StatusCode,
			"GET %s: %s", url, strings.TrimSpace(string(body)))
	}

	var snap domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, domain.NewAPIError(domain.SourceUpstreamFeed, resp.StatusCode, "decode %s: %v", url, err)
	}
	return snap, nil
}
