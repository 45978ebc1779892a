package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys shared by the upstream adapters.
const (
	// Feed
	AttrFeedHoursBack = attribute.Key("feed.hours_back")
	AttrFeedSlots     = attribute.Key("feed.slots")
	AttrHTTPStatus    = attribute.Key("http.response.status_code")

	// Forecast
	AttrForecastPoints    = attribute.Key("forecast.points")
	AttrForecastVariables = attribute.Key("forecast.variables")
	AttrForecastWindow    = attribute.Key("forecast.window")
)
