package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// trackFile accepts either a bare list of points or a document with a
// points key, in YAML or JSON.
type trackFile struct {
	Points []domain.TrackPoint `yaml:"points"`
}

// readTrack decodes a chronological track. Points outside valid WGS 84
// ranges are rejected; longitudes are normalized later by the generator.
func readTrack(r io.Reader) ([]domain.TrackPoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse track: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var points []domain.TrackPoint
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		if err := root.Content[0].Decode(&points); err != nil {
			return nil, fmt.Errorf("decode track points: %w", err)
		}
	case yaml.MappingNode:
		var doc trackFile
		if err := root.Content[0].Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode track document: %w", err)
		}
		points = doc.Points
	default:
		return nil, fmt.Errorf("track must be a list of points or a mapping with points")
	}

	for i, p := range points {
		if p.Lat < -90 || p.Lat > 90 {
			return nil, fmt.Errorf("point %d: latitude %.4f out of range", i, p.Lat)
		}
		if p.Lng < -360 || p.Lng > 360 {
			return nil, fmt.Errorf("point %d: longitude %.4f out of range", i, p.Lng)
		}
	}
	return points, nil
}
