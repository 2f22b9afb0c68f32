package domain

import (
	"context"
	"log/slog"
)

// EnrichWithStation attempts to enrich a reading with station metadata.
// If directory is nil or the lookup fails, the reading is returned with
// StationSource set accordingly (graceful degradation).
func EnrichWithStation(ctx context.Context, reading StationReading, directory StationDirectory, logger *slog.Logger) StationReading {
	if directory == nil || reading.StationID == "" {
		reading.StationSource = "none"
		return reading
	}

	info, err := directory.Lookup(ctx, reading.StationID)
	if err != nil {
		logger.Warn("station lookup failed",
			"reading_id", reading.ID,
			"station_id", reading.StationID,
			"error", err,
		)
		reading.StationSource = "failed"
		return reading
	}

	if info.Name == "" {
		reading.StationSource = "none"
		return reading
	}

	reading.StationName = info.Name
	reading.StationLat = info.Lat
	reading.StationLon = info.Lon
	reading.StationSource = "registry"
	return reading
}
