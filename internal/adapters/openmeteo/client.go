// Package openmeteo queries hourly pressure-level wind from the Open-Meteo
// forecast API.
package openmeteo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/pkg/metrics"
	"github.com/samirrijal/balloonwind/internal/pkg/telemetry"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

var tracer = otel.Tracer("github.com/samirrijal/balloonwind/internal/adapters/openmeteo")

// Client provides access to the Open-Meteo forecast API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new forecast client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a new forecast client with a custom HTTP client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// errorResponse is the body Open-Meteo returns for rejected queries.
type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

type locationResponse struct {
	Latitude         float64                    `json:"latitude"`
	Longitude        float64                    `json:"longitude"`
	Elevation        float64                    `json:"elevation"`
	UTCOffsetSeconds int                        `json:"utc_offset_seconds"`
	Hourly           map[string]json.RawMessage `json:"hourly"`
}

// Query builds the URL query for a request.
func Query(req domain.ForecastRequest) url.Values {
	lats := make([]string, len(req.Points))
	lngs := make([]string, len(req.Points))
	for i, p := range req.Points {
		lats[i] = strconv.FormatFloat(p.Lat, 'f', -1, 64)
		lngs[i] = strconv.FormatFloat(p.Lng, 'f', -1, 64)
	}

	params := url.Values{}
	params.Set("latitude", strings.Join(lats, ","))
	params.Set("longitude", strings.Join(lngs, ","))
	params.Set("hourly", strings.Join(req.Variables, ","))
	params.Set("start_hour", req.Window.StartHour())
	params.Set("end_hour", req.Window.EndHour())
	params.Set("timezone", "GMT")
	return params
}

// FetchWind returns one series per requested point, in request order.
func (c *Client) FetchWind(ctx context.Context, req domain.ForecastRequest) ([]domain.WindSeries, error) {
	ctx, span := tracer.Start(ctx, "openmeteo.FetchWind", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		telemetry.AttrForecastPoints.Int(len(req.Points)),
		telemetry.AttrForecastVariables.Int(len(req.Variables)),
		telemetry.AttrForecastWindow.String(req.Window.StartHour()+"/"+req.Window.EndHour()),
	)

	start := time.Now()
	series, err := c.fetch(ctx, req)
	metrics.ForecastFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if apiErr, ok := domain.AsAPIError(err); ok {
			span.SetAttributes(telemetry.AttrHTTPStatus.Int(apiErr.Status))
			metrics.ForecastFetchErrors.WithLabelValues(string(apiErr.Source)).Inc()
		}
		return nil, err
	}
	return series, nil
}

func (c *Client) fetch(ctx context.Context, req domain.ForecastRequest) ([]domain.WindSeries, error) {
	requestURL := c.baseURL + "?" + Query(req).Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewAPIError(domain.SourceNetwork, 0, "forecast request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewAPIError(domain.SourceNetwork, resp.StatusCode, "read forecast response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Reason != "" {
			return nil, domain.NewAPIError(domain.SourceForecastService, resp.StatusCode, "%s", e.Reason)
		}
		return nil, domain.NewAPIError(domain.SourceForecastService, resp.StatusCode, "unexpected status %s", resp.Status)
	}

	locations, err := decodeLocations(body)
	if err != nil {
		return nil, domain.NewAPIError(domain.SourceForecastService, resp.StatusCode, "decode forecast: %v", err)
	}
	if len(locations) != len(req.Points) {
		return nil, domain.NewAPIError(domain.SourceForecastService, resp.StatusCode,
			"expected %d locations, got %d", len(req.Points), len(locations))
	}

	series := make([]domain.WindSeries, len(locations))
	for i, loc := range locations {
		s, err := toSeries(loc, req.Variables)
		if err != nil {
			return nil, domain.NewAPIError(domain.SourceForecastService, resp.StatusCode, "location %d: %v", i, err)
		}
		series[i] = s
	}
	return series, nil
}

// decodeLocations accepts both shapes: an array for multi-location queries
// and a bare object for a single location.
func decodeLocations(body []byte) ([]locationResponse, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var locs []locationResponse
		if err := json.Unmarshal(trimmed, &locs); err != nil {
			return nil, err
		}
		return locs, nil
	}

	var e errorResponse
	if json.Unmarshal(trimmed, &e) == nil && e.Error {
		return nil, fmt.Errorf("%s", e.Reason)
	}
	var loc locationResponse
	if err := json.Unmarshal(trimmed, &loc); err != nil {
		return nil, err
	}
	return []locationResponse{loc}, nil
}

func toSeries(loc locationResponse, variables []string) (domain.WindSeries, error) {
	s := domain.WindSeries{
		Lat:              loc.Latitude,
		Lng:              loc.Longitude,
		Elevation:        loc.Elevation,
		UTCOffsetSeconds: loc.UTCOffsetSeconds,
		Variables:        variables,
		Values:           make([][]*float64, len(variables)),
	}

	if raw, ok := loc.Hourly["time"]; ok {
		var stamps []string
		if err := json.Unmarshal(raw, &stamps); err != nil {
			return s, fmt.Errorf("hourly.time: %w", err)
		}
		s.Times = make([]time.Time, len(stamps))
		for i, ts := range stamps {
			t, err := time.Parse(domain.HourLayout, ts)
			if err != nil {
				return s, fmt.Errorf("hourly.time[%d]: %w", i, err)
			}
			s.Times[i] = t.Add(-time.Duration(loc.UTCOffsetSeconds) * time.Second)
		}
	}

	for i, name := range variables {
		raw, ok := loc.Hourly[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &s.Values[i]); err != nil {
			return s, fmt.Errorf("hourly.%s: %w", name, err)
		}
	}
	return s, nil
}
