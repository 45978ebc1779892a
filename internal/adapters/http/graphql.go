package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/balloonwind/internal/core/domain"
	"github.com/samirrijal/balloonwind/internal/core/usecases"
)

// timeField renders a time.Time struct field as RFC 3339.
func timeField(get func(src any) (time.Time, bool)) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			t, ok := get(p.Source)
			if !ok {
				return nil, nil
			}
			return t.UTC().Format(time.RFC3339), nil
		},
	}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	balloonType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Balloon",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.Int},
			"label": &graphql.Field{Type: graphql.String},
		},
	})

	pressureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PressureLevel",
		Fields: graphql.Fields{
			"hpa":      &graphql.Field{Type: graphql.Int},
			"altitude": &graphql.Field{Type: graphql.String},
		},
	})

	trackPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TrackPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
			"alt": &graphql.Field{Type: graphql.Float},
		},
	})

	gridPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	windowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Window",
		Fields: graphql.Fields{
			"start": timeField(func(src any) (time.Time, bool) {
				w, ok := src.(domain.Window)
				return w.Start, ok
			}),
			"end": timeField(func(src any) (time.Time, bool) {
				w, ok := src.(domain.Window)
				return w.End, ok
			}),
		},
	})

	trackType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Track",
		Fields: graphql.Fields{
			"balloon_id":  &graphql.Field{Type: graphql.Int},
			"label":       &graphql.Field{Type: graphql.String},
			"hours":       &graphql.Field{Type: graphql.Int},
			"missing":     &graphql.Field{Type: graphql.Int},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"window":      &graphql.Field{Type: windowType},
			"points":      &graphql.Field{Type: graphql.NewList(trackPointType)},
			"times": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					t, ok := p.Source.(*domain.Track)
					if !ok {
						return nil, nil
					}
					out := make([]string, len(t.Times))
					for i, ts := range t.Times {
						out[i] = ts.UTC().Format(time.RFC3339)
					}
					return out, nil
				},
			},
		},
	})

	bboxType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"min_lat":       &graphql.Field{Type: graphql.Float},
			"max_lat":       &graphql.Field{Type: graphql.Float},
			"min_lon":       &graphql.Field{Type: graphql.Float},
			"max_lon":       &graphql.Field{Type: graphql.Float},
			"lon_width_deg": &graphql.Field{Type: graphql.Float},
		},
	})

	gridType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Grid",
		Fields: graphql.Fields{
			"strategy": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					g, ok := p.Source.(domain.GridResult)
					if !ok {
						return nil, nil
					}
					return string(g.Strategy), nil
				},
			},
			"bbox":   &graphql.Field{Type: bboxType},
			"points": &graphql.Field{Type: graphql.NewList(gridPointType)},
		},
	})

	windVectorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WindVector",
		Fields: graphql.Fields{
			"lat":                 &graphql.Field{Type: graphql.Float},
			"lng":                 &graphql.Field{Type: graphql.Float},
			"u":                   &graphql.Field{Type: graphql.Float},
			"v":                   &graphql.Field{Type: graphql.Float},
			"speed":               &graphql.Field{Type: graphql.Float},
			"direction_deg":       &graphql.Field{Type: graphql.Float},
			"geopotential_height": &graphql.Field{Type: graphql.Float},
		},
	})

	forecastErrorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ForecastError",
		Fields: graphql.Fields{
			"source": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					e, ok := p.Source.(*domain.APIError)
					if !ok {
						return nil, nil
					}
					return string(e.Source), nil
				},
			},
			"message": &graphql.Field{Type: graphql.String},
			"status":  &graphql.Field{Type: graphql.Int},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapData",
		Fields: graphql.Fields{
			"track":          &graphql.Field{Type: trackType},
			"grid":           &graphql.Field{Type: gridType},
			"window":         &graphql.Field{Type: windowType},
			"pressure":       &graphql.Field{Type: pressureType},
			"hour_index":     &graphql.Field{Type: graphql.Int},
			"vectors":        &graphql.Field{Type: graphql.NewList(windVectorType)},
			"forecast_error": &graphql.Field{Type: forecastErrorType},
		},
	})

	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"alt": &graphql.InputObjectFieldConfig{Type: graphql.Float, DefaultValue: 0.0},
		},
	})

	gridArgs := graphql.FieldConfigArgument{
		"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		"hours":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultHours},
		"n":        &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.Grid.Resolution},
		"min_span": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: deps.Grid.MinSpanDeg},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"balloons": &graphql.Field{
				Type:        graphql.NewList(balloonType),
				Description: "List balloons, optionally filtered by label",
				Args: graphql.FieldConfigArgument{
					"query":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					balloons, _ := deps.Catalog.Balloons(p.Args["query"].(string), p.Args["offset"].(int), p.Args["limit"].(int))
					return balloons, nil
				},
			},
			"pressureLevels": &graphql.Field{
				Type:        graphql.NewList(pressureType),
				Description: "Supported isobaric levels, surface first",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Catalog.PressureLevels(), nil
				},
			},
			"track": &graphql.Field{
				Type:        trackType,
				Description: "Chronological path of one balloon",
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"hours": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultHours},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Tracks.Track(p.Context, p.Args["id"].(int), p.Args["hours"].(int))
				},
			},
			"grid": &graphql.Field{
				Type:        gridType,
				Description: "Wind-sampling grid around a balloon's path",
				Args:        gridArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					_, grid, err := deps.Maps.Grid(p.Context, p.Args["id"].(int), p.Args["hours"].(int),
						p.Args["n"].(int), p.Args["min_span"].(float64))
					return grid, err
				},
			},
			"generateGrid": &graphql.Field{
				Type:        gridType,
				Description: "Wind-sampling grid for an arbitrary path",
				Args: graphql.FieldConfigArgument{
					"path":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pointInput)))},
					"n":        &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.Grid.Resolution},
					"min_span": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: deps.Grid.MinSpanDeg},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					raw, _ := p.Args["path"].([]any)
					path := make([]domain.TrackPoint, 0, len(raw))
					for _, r := range raw {
						m, _ := r.(map[string]any)
						lat, _ := m["lat"].(float64)
						lng, _ := m["lng"].(float64)
						alt, _ := m["alt"].(float64)
						path = append(path, domain.TrackPoint{Lat: lat, Lng: lng, Alt: alt})
					}
					return deps.Maps.Generate(path, p.Args["n"].(int), p.Args["min_span"].(float64))
				},
			},
			"map": &graphql.Field{
				Type:        mapType,
				Description: "Track, grid and wind vectors for one balloon",
				Args: graphql.FieldConfigArgument{
					"id":         gridArgs["id"],
					"hours":      gridArgs["hours"],
					"n":          gridArgs["n"],
					"min_span":   gridArgs["min_span"],
					"pressure":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.Grid.PressureHPa},
					"hour_index": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					q := usecases.MapQuery{
						BalloonID:   p.Args["id"].(int),
						Hours:       p.Args["hours"].(int),
						N:           p.Args["n"].(int),
						MinSpanDeg:  p.Args["min_span"].(float64),
						PressureHPa: p.Args["pressure"].(int),
					}
					q.HourIndex = q.Hours
					if hi, ok := p.Args["hour_index"].(int); ok {
						q.HourIndex = hi
					}
					return deps.Maps.Load(p.Context, q)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
