package usecases

import (
	"strings"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// CatalogService lists the selectable balloons and pressure levels.
type CatalogService struct {
	balloons []domain.Balloon
}

// NewCatalogService creates a catalogue for a fleet of the given size.
func NewCatalogService(fleetSize int) *CatalogService {
	if fleetSize <= 0 {
		fleetSize = domain.FleetSize
	}
	balloons := make([]domain.Balloon, fleetSize)
	for i := range balloons {
		balloons[i] = domain.Balloon{ID: i, Label: domain.BalloonLabel(i)}
	}
	return &CatalogService{balloons: balloons}
}

// Balloons filters by a case-insensitive label substring and returns one
// page together with the total match count.
func (s *CatalogService) Balloons(query string, offset, limit int) ([]domain.Balloon, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	matches := s.balloons
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		matches = make([]domain.Balloon, 0)
		for _, b := range s.balloons {
			if strings.Contains(strings.ToLower(b.Label), q) {
				matches = append(matches, b)
			}
		}
	}

	total := len(matches)
	if offset >= total {
		return []domain.Balloon{}, total
	}
	end := min(offset+limit, total)
	return matches[offset:end], total
}

// PressureLevels returns the supported levels, surface first.
func (s *CatalogService) PressureLevels() []domain.PressureLevel {
	return domain.PressureLevels
}
