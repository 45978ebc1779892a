package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/balloonwind/internal/adapters/windborne"
	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/usecases"
	"github.com/samirrijal/balloonwind/internal/pkg/geospatial"
)

type LoggerOptions struct {
	Level string `long:"log-level" env:"LOG_LEVEL" description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	JSON  bool   `long:"log-json"  env:"LOG_JSON"  description:"Log as JSON instead of console text"`
}

// Setup configures the global zerolog logger on stderr.
func (o LoggerOptions) Setup() {
	level, err := zerolog.ParseLevel(o.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if o.JSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

type Options struct {
	Logger LoggerOptions `group:"Logger options"`

	TrackFile string  `short:"f" long:"track"      env:"GRIDCTL_TRACK"      description:"YAML or JSON track file (- for stdin)"`
	BalloonID int     `short:"b" long:"balloon"    env:"GRIDCTL_BALLOON"    description:"Fetch the live track of this balloon instead of reading a file" default:"-1"`
	Hours     int     `short:"H" long:"hours"      env:"GRIDCTL_HOURS"      description:"Hours of history for a live track" default:"23"`
	Upstream  string  `short:"u" long:"upstream"   env:"GRIDCTL_UPSTREAM"   description:"Balloon feed base URL" default:"https://a.windbornesystems.com/treasure"`
	FleetSize int     `long:"fleet-size"           env:"GRIDCTL_FLEET_SIZE" description:"Number of balloons in the feed" default:"1000"`
	N         int     `short:"n" long:"resolution" env:"GRIDCTL_RESOLUTION" description:"Samples per grid axis" default:"5"`
	MinSpan   float64 `short:"m" long:"min-span"   env:"GRIDCTL_MIN_SPAN"   description:"Minimum span per axis in degrees" default:"0.01"`
	Polar     float64 `long:"polar-threshold"      description:"Absolute latitude that selects the polar generator" default:"85"`
	Output    string  `short:"o" long:"output"     env:"GRIDCTL_OUTPUT"     description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Timeout   int     `long:"timeout"              description:"Upstream timeout in seconds" default:"10"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	path, err := loadPath(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load track")
	}

	gridOpts := geospatial.DefaultOptions()
	gridOpts.PolarThresholdDeg = opts.Polar

	result := gridOpts.Generate(path, opts.N, opts.MinSpan)

	log.Info().
		Int("points_in", len(path)).
		Int("points_out", len(result.Points)).
		Str("strategy", string(result.Strategy)).
		Bool("antimeridian", result.BBox.CrossesAntimeridian()).
		Msg("Grid generated")

	if err := writeResult(os.Stdout, opts.Output, result); err != nil {
		log.Fatal().Err(err).Msg("Failed to write grid")
	}
}

func loadPath(opts Options) ([]domain.TrackPoint, error) {
	if opts.BalloonID >= 0 {
		return fetchPath(opts)
	}
	if opts.TrackFile == "" {
		return nil, fmt.Errorf("either --track or --balloon is required")
	}

	if opts.TrackFile == "-" {
		return readTrack(os.Stdin)
	}

	f, err := os.Open(opts.TrackFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return readTrack(f)
}

func fetchPath(opts Options) ([]domain.TrackPoint, error) {
	timeout := time.Duration(opts.Timeout) * time.Second
	client := windborne.NewClient(opts.Upstream, timeout)
	tracks := usecases.NewTrackService(client, opts.FleetSize, nil)

	// one fetch per hour, so give the whole window some headroom
	ctx, cancel := context.WithTimeout(context.Background(), 4*timeout)
	defer cancel()

	track, err := tracks.Track(ctx, opts.BalloonID, opts.Hours)
	if err != nil {
		return nil, fmt.Errorf("fetch track of balloon %d: %w", opts.BalloonID, err)
	}

	log.Debug().
		Str("balloon", track.Label).
		Int("points", len(track.Points)).
		Int("missing", track.Missing).
		Float64("distance_km", track.DistanceKm).
		Msg("Live track fetched")

	return track.Points, nil
}

func writeResult(w io.Writer, format string, result domain.GridResult) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}
