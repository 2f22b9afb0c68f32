package domain

import "context"

// StationDirectory resolves station metadata for enrichment.
type StationDirectory interface {
	// Lookup returns metadata for the given station ID.
	Lookup(ctx context.Context, stationID string) (StationInfo, error)
}
