package domain

import "math"

// Clamp bounds for the Stull approximation. The polynomial was fit on a
// bounded domain; inputs outside it are saturated to the nearest bound rather
// than extrapolated.
const (
	TemperatureMinC = -40.0
	TemperatureMaxC = 60.0
	HumidityMinPct  = 0.0
	HumidityMaxPct  = 100.0
)

// EstimateWetBulb computes the wet-bulb temperature in °C from a dry-bulb
// temperature (°C) and relative humidity (%) using the Stull (2011) empirical
// approximation. Inputs are clamped into [-40, 60] °C and [0, 100] % before
// evaluation. If either input is NaN or infinite, the second return value is
// false and no estimate is produced; a defaulted number could be misread as a
// plausible reading.
//
// Documented accuracy is ±1 °C for dry-bulb in [0, 50] °C and humidity in
// [5, 99] %. Outside that band (but within the clamp range) the fit may
// diverge; that is a property of the approximation, not an error condition.
//
// The atan terms operate on dimensionless arguments and produce radians used
// as curve-fit intermediates, not physical angles. No degree conversion
// applies.
func EstimateWetBulb(tempC, rhPct float64) (float64, bool) {
	if !isFinite(tempC) || !isFinite(rhPct) {
		return 0, false
	}

	t := clamp(tempC, TemperatureMinC, TemperatureMaxC)
	rh := clamp(rhPct, HumidityMinPct, HumidityMaxPct)

	wb := t*math.Atan(0.151977*math.Sqrt(rh+8.313659)) +
		math.Atan(t+rh) -
		math.Atan(rh-1.676331) +
		0.00391838*math.Pow(rh, 1.5)*math.Atan(0.023101*rh) -
		4.686035

	return wb, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
