package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseRawReading deserializes a RawReading's value into a StationReading.
// It expects the flat JSON produced by the collector service.
func ParseRawReading(raw RawReading) (StationReading, error) {
	var rec RawSensorRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return StationReading{}, fmt.Errorf("parse raw reading: %w", err)
	}

	temp := parseFiniteFloat(rec.TemperatureC)
	rh := parseFiniteFloat(rec.HumidityPct)
	observedAt := parseObservationTime(raw.Timestamp, rec.Time)

	return StationReading{
		ID:           generateID(rec.StationID, rec.Time, rec.TemperatureC, rec.HumidityPct),
		StationID:    rec.StationID,
		TemperatureC: temp,
		HumidityPct:  rh,
		ObservedAt:   observedAt,

		RawPayload: raw.Value,
	}, nil
}

// parseFiniteFloat parses a string as a finite float64, returning nil when the
// value is empty, unparseable, or non-finite. A missing measurement must stay
// missing: defaulting to 0 would read as a plausible temperature or humidity.
func parseFiniteFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseObservationTime parses the record's RFC3339 time field, falling back to
// the message timestamp set by the collector when the field is absent or malformed.
func parseObservationTime(fallback time.Time, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback
	}
	return t.UTC()
}

// generateID produces a deterministic ID from the reading's key fields.
// Deterministic IDs enable idempotent upserts downstream and replay safety —
// reprocessing the same raw reading produces the same ID.
func generateID(stationID, timeStr, tempStr, rhStr string) string {
	input := fmt.Sprintf("%s|%s|%s|%s", stationID, timeStr, tempStr, rhStr)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if stationID == "" {
		return short
	}
	return stationID + "-" + short
}

// EnrichReading computes the wet-bulb estimate for a parsed reading and
// derives the dependent fields: clamped inputs, heat-risk label, hourly time
// bucket, and processing timestamp. Missing inputs yield a nil WetBulbC; the
// reading is still emitted so downstream consumers see the gap.
func EnrichReading(reading StationReading) StationReading {
	temp := math.NaN()
	if reading.TemperatureC != nil {
		temp = *reading.TemperatureC
	}
	rh := math.NaN()
	if reading.HumidityPct != nil {
		rh = *reading.HumidityPct
	}

	if wb, ok := EstimateWetBulb(temp, rh); ok {
		reading.WetBulbC = &wb
	} else {
		reading.WetBulbC = nil
	}

	reading.InputClamped = clampInputs(&reading)
	reading.HeatRisk = deriveHeatRisk(reading.WetBulbC)
	reading.TimeBucket = deriveTimeBucket(reading.ObservedAt)
	reading.ProcessedAt = clock.Now()
	return reading
}

// clampInputs saturates the stored temperature and humidity into the
// estimator's domain, mirroring what EstimateWetBulb did internally, so the
// emitted event carries the values the estimate was actually computed from.
// Returns true if either input was adjusted.
func clampInputs(reading *StationReading) bool {
	clamped := false
	if reading.TemperatureC != nil {
		if c := clamp(*reading.TemperatureC, TemperatureMinC, TemperatureMaxC); c != *reading.TemperatureC {
			reading.TemperatureC = &c
			clamped = true
		}
	}
	if reading.HumidityPct != nil {
		if c := clamp(*reading.HumidityPct, HumidityMinPct, HumidityMaxPct); c != *reading.HumidityPct {
			reading.HumidityPct = &c
			clamped = true
		}
	}
	return clamped
}

// deriveHeatRisk maps an optional wet-bulb temperature to a heat-risk label,
// returning "" when the estimate is undefined.
func deriveHeatRisk(wetBulbC *float64) string {
	if wetBulbC == nil {
		return ""
	}
	return HeatRiskLabel(*wetBulbC)
}

// HeatRiskLabel maps a wet-bulb temperature to a heat-risk label:
//   - <26 °C low: minimal physiological stress
//   - <31 °C moderate: sustained outdoor labor impaired
//   - <35 °C severe: dangerous for sustained exposure
//   - ≥35 °C extreme: at or beyond the theoretical human survivability limit
//
// The four-level scale is a project-specific simplification for user-facing
// queries.
func HeatRiskLabel(wb float64) string {
	switch {
	case wb < 26:
		return "low"
	case wb < 31:
		return "moderate"
	case wb < 35:
		return "severe"
	default:
		return "extreme"
	}
}

// deriveTimeBucket truncates the observation time to the hour in UTC.
// Returns "" if the input is zero.
func deriveTimeBucket(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Truncate(time.Hour).Format(time.RFC3339)
}

// SerializeReading marshals a StationReading into an OutputEvent for the sink topic.
func SerializeReading(reading StationReading) (OutputEvent, error) {
	data, err := json.Marshal(reading)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize station reading: %w", err)
	}
	return OutputEvent{
		Key:   []byte(reading.ID),
		Value: data,
		Headers: map[string]string{
			"station_id":   reading.StationID,
			"processed_at": reading.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
