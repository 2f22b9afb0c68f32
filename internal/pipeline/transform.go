package pipeline

import (
	"context"
	"log/slog"

	"github.com/heatwise/wetbulb-etl/internal/domain"
	"github.com/heatwise/wetbulb-etl/internal/observability"
)

// WetBulbTransformer parses raw station readings, computes the wet-bulb
// estimate and heat-risk label, and attaches station registry metadata.
type WetBulbTransformer struct {
	directory domain.StationDirectory
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewWetBulbTransformer creates a transformer. directory may be nil, in which
// case readings are emitted without station metadata.
func NewWetBulbTransformer(directory domain.StationDirectory, logger *slog.Logger, metrics *observability.Metrics) *WetBulbTransformer {
	return &WetBulbTransformer{
		directory: directory,
		logger:    logger,
		metrics:   metrics,
	}
}

// Transform converts a raw Kafka message into an enriched output event.
// Only malformed payloads fail; readings with missing or out-of-range
// measurements flow through with the gap recorded on the event.
func (t *WetBulbTransformer) Transform(ctx context.Context, raw domain.RawReading) (domain.OutputEvent, error) {
	reading, err := domain.ParseRawReading(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	wasTemp := reading.TemperatureC
	wasRH := reading.HumidityPct

	reading = domain.EnrichReading(reading)
	t.recordEstimatorOutcome(reading, wasTemp, wasRH)

	reading = domain.EnrichWithStation(ctx, reading, t.directory, t.logger)

	return domain.SerializeReading(reading)
}

// recordEstimatorOutcome increments the undefined and clamped counters based on
// what enrichment did to the reading. wasTemp and wasRH are the pre-enrichment
// values, needed because EnrichReading overwrites clamped inputs in place.
func (t *WetBulbTransformer) recordEstimatorOutcome(reading domain.StationReading, wasTemp, wasRH *float64) {
	if reading.WetBulbC == nil {
		t.metrics.EstimatesUndefined.Inc()
		t.logger.Debug("wet-bulb estimate undefined",
			"reading_id", reading.ID,
			"station_id", reading.StationID,
		)
	}
	if !reading.InputClamped {
		return
	}
	if wasTemp != nil && reading.TemperatureC != nil && *wasTemp != *reading.TemperatureC {
		t.metrics.InputsClamped.WithLabelValues("temperature").Inc()
	}
	if wasRH != nil && reading.HumidityPct != nil && *wasRH != *reading.HumidityPct {
		t.metrics.InputsClamped.WithLabelValues("humidity").Inc()
	}
}
