package domain

import (
	"fmt"
	"time"
)

// HourLayout is the hour-resolution timestamp format of the forecast service.
const HourLayout = "2006-01-02T15:04"

// Window is a closed, hour-aligned time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowEndingAt returns the window of the given length whose end is now
// truncated to the hour (UTC).
func WindowEndingAt(now time.Time, hours int) Window {
	end := now.UTC().Truncate(time.Hour)
	return Window{
		Start: end.Add(-time.Duration(hours) * time.Hour),
		End:   end,
	}
}

// StartHour formats Start for the forecast query.
func (w Window) StartHour() string { return w.Start.Format(HourLayout) }

// EndHour formats End for the forecast query.
func (w Window) EndHour() string { return w.End.Format(HourLayout) }

// PressureLevel is an isobaric level with its approximate altitude.
type PressureLevel struct {
	HPa      int    `json:"hpa"`
	Altitude string `json:"altitude"`
}

// PressureLevels lists the levels requested from the forecast service,
// surface first.
var PressureLevels = []PressureLevel{
	{1000, "110 m"},
	{975, "320 m"},
	{950, "500 m"},
	{925, "800 m"},
	{900, "1000 m"},
	{850, "1500 m"},
	{800, "1900 m"},
	{700, "3 km"},
	{600, "4.2 km"},
	{500, "5.6 km"},
	{400, "7.2 km"},
	{300, "9.2 km"},
	{250, "10.4 km"},
	{200, "11.8 km"},
	{150, "13.5 km"},
	{100, "15.8 km"},
	{70, "17.7 km"},
	{50, "19.3 km"},
	{30, "22 km"},
}

// LookupPressureLevel finds a level by hPa value.
func LookupPressureLevel(hPa int) (PressureLevel, bool) {
	for _, l := range PressureLevels {
		if l.HPa == hPa {
			return l, true
		}
	}
	return PressureLevel{}, false
}

// WindUVar is the zonal wind variable name at a pressure level.
func WindUVar(hPa int) string { return fmt.Sprintf("wind_u_component_%dhPa", hPa) }

// WindVVar is the meridional wind variable name at a pressure level.
func WindVVar(hPa int) string { return fmt.Sprintf("wind_v_component_%dhPa", hPa) }

// GeopotentialHeightVar is the geopotential height variable name at a pressure level.
func GeopotentialHeightVar(hPa int) string { return fmt.Sprintf("geopotential_height_%dhPa", hPa) }

// ForecastRequest is one batched forecast query. Points are sent as parallel
// latitude/longitude arrays.
type ForecastRequest struct {
	Points    []GridPoint
	Variables []string
	Window    Window
}

// WindSeries is the hourly forecast at one coordinate. Values[i] belongs to
// Variables[i]; a nil sample means the service had no value.
type WindSeries struct {
	Lat              float64      `json:"lat"`
	Lng              float64      `json:"lng"`
	Elevation        float64      `json:"elevation"`
	UTCOffsetSeconds int          `json:"utc_offset_seconds"`
	Times            []time.Time  `json:"times"`
	Variables        []string     `json:"variables"`
	Values           [][]*float64 `json:"values"`
}

// Series returns the samples of a named variable.
func (s WindSeries) Series(name string) ([]*float64, bool) {
	for i, v := range s.Variables {
		if v == name && i < len(s.Values) {
			return s.Values[i], true
		}
	}
	return nil, false
}

// WindVector is the wind at one grid point, pressure level and hour.
type WindVector struct {
	Lat                float64  `json:"lat"`
	Lng                float64  `json:"lng"`
	U                  float64  `json:"u"`
	V                  float64  `json:"v"`
	Speed              float64  `json:"speed"`
	DirectionDeg       float64  `json:"direction_deg"`
	GeopotentialHeight *float64 `json:"geopotential_height,omitempty"`
}

// MapData is everything a client needs to draw one balloon against the wind.
type MapData struct {
	Track         *Track        `json:"track"`
	Grid          GridResult    `json:"grid"`
	Window        Window        `json:"window"`
	Pressure      PressureLevel `json:"pressure"`
	HourIndex     int           `json:"hour_index"`
	Series        []WindSeries  `json:"series,omitempty"`
	Vectors       []WindVector  `json:"vectors,omitempty"`
	ForecastError *APIError     `json:"forecast_error,omitempty"`
}
