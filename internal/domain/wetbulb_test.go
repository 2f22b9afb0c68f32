package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateWetBulb_KnownValue(t *testing.T) {
	// 32 °C / 60 % sits inside the documented ±1 °C accuracy band.
	wb, ok := EstimateWetBulb(32, 60)
	require.True(t, ok)
	assert.InDelta(t, 25.79, wb, 0.01, "formula evaluated directly")
	assert.InDelta(t, 26.5, wb, 1.0, "published reference value within accuracy band")
}

func TestEstimateWetBulb_Deterministic(t *testing.T) {
	a, okA := EstimateWetBulb(23.7, 41.2)
	b, okB := EstimateWetBulb(23.7, 41.2)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b, "identical inputs must give bit-identical results")
}

func TestEstimateWetBulb_Clamping(t *testing.T) {
	tests := []struct {
		name            string
		temp, rh        float64
		clampedTemp     float64
		clampedHumidity float64
	}{
		{"temperature above max", 100, 60, 60, 60},
		{"temperature below min", -100, 60, -40, 60},
		{"humidity above max", 25, 150, 25, 100},
		{"humidity below min", 25, -10, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EstimateWetBulb(tt.temp, tt.rh)
			require.True(t, ok)
			want, ok := EstimateWetBulb(tt.clampedTemp, tt.clampedHumidity)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestEstimateWetBulb_NonFiniteInputs(t *testing.T) {
	tests := []struct {
		name     string
		temp, rh float64
	}{
		{"NaN temperature", math.NaN(), 60},
		{"NaN humidity", 25, math.NaN()},
		{"positive infinity temperature", math.Inf(1), 60},
		{"negative infinity temperature", math.Inf(-1), 60},
		{"infinity humidity", 25, math.Inf(1)},
		{"both non-finite", math.NaN(), math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := EstimateWetBulb(tt.temp, tt.rh)
			assert.False(t, ok, "non-finite input must not produce an estimate")
		})
	}
}

func TestEstimateWetBulb_FiniteAcrossDomain(t *testing.T) {
	// Every finite input in the clamp range must produce a finite estimate.
	for temp := TemperatureMinC; temp <= TemperatureMaxC; temp += 5 {
		for rh := HumidityMinPct; rh <= HumidityMaxPct; rh += 5 {
			wb, ok := EstimateWetBulb(temp, rh)
			require.True(t, ok, "T=%g RH=%g", temp, rh)
			require.False(t, math.IsNaN(wb) || math.IsInf(wb, 0), "T=%g RH=%g -> %g", temp, rh, wb)
		}
	}
}

func TestEstimateWetBulb_MonotonicInHumidity(t *testing.T) {
	// Wet bulb rises with humidity at fixed temperature.
	low, ok := EstimateWetBulb(25, 10)
	require.True(t, ok)
	mid, ok := EstimateWetBulb(25, 50)
	require.True(t, ok)
	high, ok := EstimateWetBulb(25, 90)
	require.True(t, ok)

	assert.GreaterOrEqual(t, mid, low)
	assert.GreaterOrEqual(t, high, mid)
}

func TestEstimateWetBulb_DomainBoundaries(t *testing.T) {
	// Corners of the documented accuracy band compute without clamping.
	cold, ok := EstimateWetBulb(0, 0)
	require.True(t, ok)
	assert.False(t, math.IsNaN(cold))
	assert.Less(t, cold, 0.0, "dry air at 0 °C cools below freezing")

	// Near saturation the fit can slightly exceed the dry bulb (≈50.035 °C
	// here); that is a property of the approximation, so the check is
	// formula agreement, not an upper bound at the dry bulb.
	hot, ok := EstimateWetBulb(50, 99)
	require.True(t, ok)
	assert.False(t, math.IsNaN(hot))
	want := 50*math.Atan(0.151977*math.Sqrt(99+8.313659)) +
		math.Atan(50+99) - math.Atan(99-1.676331) +
		0.00391838*math.Pow(99, 1.5)*math.Atan(0.023101*99) - 4.686035
	assert.InDelta(t, want, hot, 1e-9)
	assert.Greater(t, hot, 40.0)
}

func TestEstimateWetBulb_SaturatedAirNearDryBulb(t *testing.T) {
	// At 100 % humidity the wet bulb approaches the dry bulb.
	wb, ok := EstimateWetBulb(30, 100)
	require.True(t, ok)
	assert.InDelta(t, 30, wb, 1.5)
}
