// Package domain models weather-station readings and their wet-bulb enrichment.
//
// # Data Source
//
// Raw readings originate from field weather stations reporting dry-bulb
// temperature and relative humidity. The upstream collector service polls
// station exports, injects a StationID field, and publishes each observation
// as flat JSON to the Kafka source topic. Numeric fields are passed through as
// strings, exactly as they appear in the station CSV columns.
//
// # Wet-Bulb Estimation
//
// The wet-bulb temperature is estimated with the Stull (2011) closed-form
// approximation:
//
//	Tw = T·atan(0.151977·sqrt(RH + 8.313659))
//	   + atan(T + RH) − atan(RH − 1.676331)
//	   + 0.00391838·RH^1.5·atan(0.023101·RH)
//	   − 4.686035
//
// with T in °C and RH in %. The atan terms are curve-fit intermediates on
// dimensionless arguments, not angle arithmetic; no degree/radian conversion
// is applied. Documented accuracy is ±1 °C for T in [0, 50] °C and RH in
// [5, 99] %.
//
// Inputs are clamped into the fit's validated domain, [-40, 60] °C and
// [0, 100] %, before evaluation. Saturating extreme inputs is preferred over
// extrapolating the polynomial outside its fit range; the emitted event
// records whether clamping occurred. Non-finite inputs (and missing source
// values, which parse to nil) yield no estimate at all rather than a
// defaulted number. See [EstimateWetBulb].
//
// # Heat-Risk Classification
//
// Derived from the wet-bulb estimate using thresholds from the heat-stress
// literature. The four-level scale (low, moderate, severe, extreme) is a
// project-specific simplification for user-facing queries:
//
//	<26 °C low | <31 °C moderate | <35 °C severe | ≥35 °C extreme
//
// 26 °C marks impaired sustained labor, 31 °C danger for sustained exposure,
// and 35 °C the theoretical human survivability limit.
//
// # ID Generation
//
// Reading IDs are deterministic SHA-256 hashes of station|time|temp|rh. This
// enables idempotent upserts downstream (ON CONFLICT DO NOTHING) and replay
// safety without distributed coordination. See [generateID].
package domain
