package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/pkg/geospatial"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Grid      GridConfig      `mapstructure:"grid"`
	Poller    PollerConfig    `mapstructure:"poller"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UpstreamConfig points at the balloon constellation feed.
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	FleetSize      int    `mapstructure:"fleet_size"`
}

func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

type ForecastConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

func (f ForecastConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

type CacheConfig struct {
	FeedTTLSeconds int `mapstructure:"feed_ttl_seconds"`
}

// GridConfig overrides the grid dispatcher thresholds.
type GridConfig struct {
	DefaultResolution int     `mapstructure:"default_resolution"`
	DefaultMinSpanDeg float64 `mapstructure:"default_min_span_deg"`
	PolarThresholdDeg float64 `mapstructure:"polar_threshold_deg"`
	NorthMeanLatDeg   float64 `mapstructure:"north_mean_lat_deg"`
	EquirectPad       float64 `mapstructure:"equirect_pad"`
	PolarPadFactor    float64 `mapstructure:"polar_pad_factor"`

	// Pressure level of the wind layer when a request names none.
	DefaultPressureHPa int `mapstructure:"default_pressure_hpa"`
}

type PollerConfig struct {
	IntervalSeconds int  `mapstructure:"interval_seconds"`
	PublishAllHours bool `mapstructure:"publish_all_hours"`
}

func (p PollerConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Durable string `mapstructure:"durable"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	// Cron schedule for the warm workflow; empty disables scheduling.
	Cron string `mapstructure:"cron"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: BALLOONWIND_UPSTREAM_BASE_URL → upstream.base_url
	v.SetEnvPrefix("BALLOONWIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("upstream.base_url", "https://a.windbornesystems.com/treasure")
	v.SetDefault("upstream.timeout_seconds", 15)
	v.SetDefault("upstream.fleet_size", 1000)
	v.SetDefault("forecast.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("forecast.timeout_seconds", 30)
	v.SetDefault("forecast.cache_ttl_seconds", 600)
	v.SetDefault("cache.feed_ttl_seconds", 10)
	v.SetDefault("grid.default_resolution", 5)
	v.SetDefault("grid.default_min_span_deg", 0.01)
	v.SetDefault("grid.polar_threshold_deg", 85.0)
	v.SetDefault("grid.north_mean_lat_deg", 60.0)
	v.SetDefault("grid.equirect_pad", 0.1)
	v.SetDefault("grid.polar_pad_factor", 1.2)
	v.SetDefault("grid.default_pressure_hpa", 250)
	v.SetDefault("poller.interval_seconds", 60)
	v.SetDefault("poller.publish_all_hours", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.durable", "feed-cache-primer")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.password", "")
	v.SetDefault("valkey.db", 0)
	v.SetDefault("valkey.key_prefix", "balloonwind:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "feed-warm-queue")
	v.SetDefault("temporal.cron", "*/10 * * * *")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		errs = append(errs, "upstream.timeout_seconds must be positive")
	}
	if c.Upstream.FleetSize <= 0 {
		errs = append(errs, "upstream.fleet_size must be positive")
	}
	if c.Forecast.BaseURL == "" {
		errs = append(errs, "forecast.base_url is required")
	}
	if c.Forecast.TimeoutSeconds <= 0 {
		errs = append(errs, "forecast.timeout_seconds must be positive")
	}
	if c.Forecast.CacheTTLSeconds <= 0 {
		errs = append(errs, "forecast.cache_ttl_seconds must be positive")
	}
	if c.Cache.FeedTTLSeconds <= 0 {
		errs = append(errs, "cache.feed_ttl_seconds must be positive")
	}
	if c.Grid.DefaultResolution < 1 {
		errs = append(errs, fmt.Sprintf("grid.default_resolution must be at least 1, got %d", c.Grid.DefaultResolution))
	}
	if c.Grid.DefaultMinSpanDeg <= 0 {
		errs = append(errs, "grid.default_min_span_deg must be positive")
	}
	if c.Grid.PolarThresholdDeg <= 0 || c.Grid.PolarThresholdDeg > 90 {
		errs = append(errs, fmt.Sprintf("grid.polar_threshold_deg must be in (0, 90], got %g", c.Grid.PolarThresholdDeg))
	}
	if c.Grid.NorthMeanLatDeg < -90 || c.Grid.NorthMeanLatDeg > 90 {
		errs = append(errs, fmt.Sprintf("grid.north_mean_lat_deg must be in [-90, 90], got %g", c.Grid.NorthMeanLatDeg))
	}
	if c.Grid.EquirectPad < 0 {
		errs = append(errs, "grid.equirect_pad must not be negative")
	}
	if c.Grid.PolarPadFactor < 1 {
		errs = append(errs, fmt.Sprintf("grid.polar_pad_factor must be at least 1, got %g", c.Grid.PolarPadFactor))
	}
	if _, ok := domain.LookupPressureLevel(c.Grid.DefaultPressureHPa); !ok {
		errs = append(errs, fmt.Sprintf("grid.default_pressure_hpa %d is not a supported level", c.Grid.DefaultPressureHPa))
	}
	if c.Poller.IntervalSeconds <= 0 {
		errs = append(errs, "poller.interval_seconds must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Options converts the grid section into dispatcher options.
func (g GridConfig) Options() geospatial.Options {
	return geospatial.Options{
		PolarThresholdDeg: g.PolarThresholdDeg,
		NorthMeanLatDeg:   g.NorthMeanLatDeg,
		EquirectPad:       g.EquirectPad,
		PolarPadFactor:    g.PolarPadFactor,
	}
}
