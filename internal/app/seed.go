package app

import (
	"context"
	"fmt"
	"nregastats/internal/logging"
	"nregastats/internal/models"
	"nregastats/internal/registry"
)

type RegionSaver interface {
	SaveRegion(ctx context.Context, r *models.Region) error
}

// SeedRegions saves every registry entry as a region of state. Re-running it
// corrects names and locations in place and never duplicates a code.
func SeedRegions(ctx context.Context, s RegionSaver, reg registry.Lookup, state string) (int, error) {
	entries := reg.List()
	for _, e := range entries {
		lat, lon := e.Lat, e.Lon
		r := models.Region{
			Code:      e.Code,
			NameEn:    e.NameEn,
			NameHi:    e.NameHi,
			State:     state,
			Latitude:  &lat,
			Longitude: &lon,
		}
		if err := s.SaveRegion(ctx, &r); err != nil {
			return 0, fmt.Errorf("failed to seed region %s: %w", e.Code, err)
		}
		logging.Debug().Str("region_code", e.Code).Str("name", e.NameEn).Msg("region seeded")
	}
	return len(entries), nil
}
