package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatwise/wetbulb-etl/internal/domain"
	"github.com/heatwise/wetbulb-etl/internal/observability"
)

type stubDirectory struct {
	info domain.StationInfo
	err  error
}

func (s *stubDirectory) Lookup(_ context.Context, _ string) (domain.StationInfo, error) {
	return s.info, s.err
}

func rawReading(payload string) domain.RawReading {
	return domain.RawReading{
		Value: []byte(payload),
		Topic: "raw-station-readings",
	}
}

func decodeEvent(t *testing.T, out domain.OutputEvent) domain.StationReading {
	t.Helper()
	var reading domain.StationReading
	require.NoError(t, json.Unmarshal(out.Value, &reading))
	return reading
}

func TestWetBulbTransformer_Transform(t *testing.T) {
	tr := NewWetBulbTransformer(nil, testLogger(), observability.NewMetricsForTesting())

	t.Run("complete reading", func(t *testing.T) {
		out, err := tr.Transform(context.Background(), rawReading(
			`{"StationID":"KSEA","Time":"2025-07-14T15:04:05Z","TemperatureC":"32","HumidityPct":"60"}`,
		))
		require.NoError(t, err)

		reading := decodeEvent(t, out)
		assert.Equal(t, "KSEA", reading.StationID)
		require.NotNil(t, reading.WetBulbC)
		assert.InDelta(t, 25.79, *reading.WetBulbC, 0.01)
		assert.Equal(t, "low", reading.HeatRisk)
		assert.Equal(t, "none", reading.StationSource)
		assert.Equal(t, []byte(reading.ID), out.Key)
		assert.Equal(t, "KSEA", out.Headers["station_id"])
	})

	t.Run("malformed payload fails", func(t *testing.T) {
		_, err := tr.Transform(context.Background(), rawReading(`not json`))
		assert.Error(t, err)
	})

	t.Run("missing measurement still emits", func(t *testing.T) {
		out, err := tr.Transform(context.Background(), rawReading(
			`{"StationID":"KSEA","Time":"2025-07-14T15:04:05Z","HumidityPct":"60"}`,
		))
		require.NoError(t, err)

		reading := decodeEvent(t, out)
		assert.Nil(t, reading.WetBulbC)
		assert.Empty(t, reading.HeatRisk)
	})
}

func TestWetBulbTransformer_EstimatorMetrics(t *testing.T) {
	t.Run("undefined estimate counted", func(t *testing.T) {
		m := observability.NewMetricsForTesting()
		tr := NewWetBulbTransformer(nil, testLogger(), m)

		_, err := tr.Transform(context.Background(), rawReading(
			`{"StationID":"KSEA","TemperatureC":"NaN","HumidityPct":"60"}`,
		))
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EstimatesUndefined))
	})

	t.Run("clamped inputs counted per field", func(t *testing.T) {
		m := observability.NewMetricsForTesting()
		tr := NewWetBulbTransformer(nil, testLogger(), m)

		out, err := tr.Transform(context.Background(), rawReading(
			`{"StationID":"KSEA","TemperatureC":"72","HumidityPct":"130"}`,
		))
		require.NoError(t, err)

		reading := decodeEvent(t, out)
		assert.True(t, reading.InputClamped)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.InputsClamped.WithLabelValues("temperature")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.InputsClamped.WithLabelValues("humidity")))
	})

	t.Run("in-range inputs not counted", func(t *testing.T) {
		m := observability.NewMetricsForTesting()
		tr := NewWetBulbTransformer(nil, testLogger(), m)

		_, err := tr.Transform(context.Background(), rawReading(
			`{"StationID":"KSEA","TemperatureC":"32","HumidityPct":"60"}`,
		))
		require.NoError(t, err)
		assert.Equal(t, 0.0, testutil.ToFloat64(m.EstimatesUndefined))
		assert.Equal(t, 0.0, testutil.ToFloat64(m.InputsClamped.WithLabelValues("temperature")))
	})
}

func TestWetBulbTransformer_StationEnrichment(t *testing.T) {
	t.Run("registry metadata attached", func(t *testing.T) {
		dir := &stubDirectory{info: domain.StationInfo{Name: "Seattle-Tacoma Intl", Lat: 47.45, Lon: -122.31}}
		tr := NewWetBulbTransformer(dir, testLogger(), observability.NewMetricsForTesting())

		out, err := tr.Transform(context.Background(), rawReading(
			`{"StationID":"KSEA","TemperatureC":"32","HumidityPct":"60"}`,
		))
		require.NoError(t, err)

		reading := decodeEvent(t, out)
		assert.Equal(t, "registry", reading.StationSource)
		assert.Equal(t, "Seattle-Tacoma Intl", reading.StationName)
	})

	t.Run("lookup failure degrades gracefully", func(t *testing.T) {
		dir := &stubDirectory{err: errors.New("registry unavailable")}
		tr := NewWetBulbTransformer(dir, testLogger(), observability.NewMetricsForTesting())

		out, err := tr.Transform(context.Background(), rawReading(
			`{"StationID":"KSEA","TemperatureC":"32","HumidityPct":"60"}`,
		))
		require.NoError(t, err)

		reading := decodeEvent(t, out)
		assert.Equal(t, "failed", reading.StationSource)
		require.NotNil(t, reading.WetBulbC)
	})
}
