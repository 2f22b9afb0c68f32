package domain

import (
	"context"
	"time"
)

// RawSensorRecord represents the flat JSON structure published by the
// collector service. Numeric fields arrive as strings because the collector
// passes station CSV columns through verbatim.
type RawSensorRecord struct {
	StationID    string `json:"StationID"`
	Time         string `json:"Time"`         // RFC3339 observation time
	TemperatureC string `json:"TemperatureC"` // dry-bulb, degrees Celsius
	HumidityPct  string `json:"HumidityPct"`  // relative humidity, percent
}

// RawReading represents an unprocessed message from the source topic.
type RawReading struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// StationInfo holds metadata about a weather station from the registry.
type StationInfo struct {
	Name      string
	Lat       float64
	Lon       float64
	Elevation float64
}

// StationReading is the domain-rich representation after parsing and
// enrichment. TemperatureC and HumidityPct are nil when the source value was
// absent or not a finite number; WetBulbC is nil when either input was, so an
// undefined estimate propagates instead of defaulting to zero.
type StationReading struct {
	ID           string   `json:"id"`
	StationID    string   `json:"station_id"`
	TemperatureC *float64 `json:"temperature_c"`
	HumidityPct  *float64 `json:"humidity_pct"`
	InputClamped bool     `json:"input_clamped,omitempty"`

	WetBulbC *float64 `json:"wet_bulb_c"`
	HeatRisk string   `json:"heat_risk,omitempty"`

	ObservedAt time.Time `json:"observed_at"`
	TimeBucket string    `json:"time_bucket,omitempty"`

	// Station registry enrichment fields.
	StationName   string  `json:"station_name,omitempty"`
	StationLat    float64 `json:"station_lat,omitempty"`
	StationLon    float64 `json:"station_lon,omitempty"`
	StationSource string  `json:"station_source,omitempty"` // "registry", "failed", "none"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
