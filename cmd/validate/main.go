// Command validate performs data integrity checks across the mock data
// fixtures: the raw station readings and the enriched JSON derived from them.
// It re-runs the transformation and verifies IDs, estimates, risk labels, and
// clamping flags are consistent.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/station_readings_250714_raw.json \
//	  -enriched-json data/mock/station_readings_250714_enriched.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heatwise/wetbulb-etl/internal/domain"
)

var baseDate = time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to raw readings JSON fixture")
	enrichedJSON := flag.String("enriched-json", "", "path to enriched readings JSON fixture")
	flag.Parse()

	if *rawJSON == "" || *enrichedJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawJSON, *enrichedJSON); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, enrichedPath string) int {
	// Set a fixed clock matching genmock for ID and timestamp reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.July, 14, 16, 0, 30, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Station Reading Integrity Validation ===")
	fmt.Println()

	rawRecords, err := loadJSON[domain.RawSensorRecord](rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	enriched, err := loadJSON[domain.StationReading](enrichedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load enriched JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTransformation(rawRecords, enriched),
		validateEstimatorInvariants(enriched),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d enriched\n", len(rawRecords), len(enriched))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Transformation ──
// Re-runs parsing and enrichment on every raw record and compares the result
// to the enriched fixture.

func validateTransformation(raw []domain.RawSensorRecord, enriched []domain.StationReading) *phase {
	p := &phase{name: "Phase 1: Transformation (raw vs enriched)"}

	if len(raw) != len(enriched) {
		p.errorf("count mismatch: %d raw, %d enriched", len(raw), len(enriched))
		return p
	}

	byID := map[string]*domain.StationReading{}
	for i := range enriched {
		if enriched[i].ID == "" {
			p.errorf("enriched record %d: missing ID", i)
			continue
		}
		byID[enriched[i].ID] = &enriched[i]
	}

	for i := range raw {
		expected, err := transformRecord(raw[i])
		if err != nil {
			p.errorf("raw record %d: %v", i, err)
			continue
		}

		actual, ok := byID[expected.ID]
		if !ok {
			p.errorf("raw record %d: ID %q not found in enriched JSON", i, expected.ID)
			continue
		}

		compareReadings(p, expected, actual)
	}

	return p
}

// transformRecord re-runs the pipeline transformation on a raw record.
func transformRecord(rec domain.RawSensorRecord) (domain.StationReading, error) {
	rawJSON, err := json.Marshal(rec)
	if err != nil {
		return domain.StationReading{}, fmt.Errorf("marshal error: %w", err)
	}
	parsed, err := domain.ParseRawReading(domain.RawReading{
		Value:     rawJSON,
		Timestamp: baseDate,
	})
	if err != nil {
		return domain.StationReading{}, fmt.Errorf("parse error: %w", err)
	}
	return domain.EnrichReading(parsed), nil
}

// compareReadings checks that an enriched reading matches the expected result.
func compareReadings(p *phase, expected domain.StationReading, actual *domain.StationReading) {
	id := expected.ID

	if actual.StationID != expected.StationID {
		p.errorf("ID %s: station: expected %q, got %q", id, expected.StationID, actual.StationID)
	}
	if !ptrFloatEq(actual.WetBulbC, expected.WetBulbC) {
		p.errorf("ID %s: wet_bulb_c: expected %s, got %s", id, ptrFloat(expected.WetBulbC), ptrFloat(actual.WetBulbC))
	}
	if actual.HeatRisk != expected.HeatRisk {
		p.errorf("ID %s: heat_risk: expected %q, got %q", id, expected.HeatRisk, actual.HeatRisk)
	}
	if actual.InputClamped != expected.InputClamped {
		p.errorf("ID %s: input_clamped: expected %t, got %t", id, expected.InputClamped, actual.InputClamped)
	}
	if !actual.ObservedAt.Equal(expected.ObservedAt) {
		p.errorf("ID %s: observed_at: expected %s, got %s", id,
			expected.ObservedAt.Format(time.RFC3339), actual.ObservedAt.Format(time.RFC3339))
	}
	if actual.TimeBucket != expected.TimeBucket {
		p.errorf("ID %s: time_bucket: expected %q, got %q", id, expected.TimeBucket, actual.TimeBucket)
	}
}

// ── Phase 2: Estimator Invariants ──
// Checks properties every enriched reading must satisfy regardless of input.

func validateEstimatorInvariants(enriched []domain.StationReading) *phase {
	p := &phase{name: "Phase 2: Estimator Invariants"}

	validRisks := map[string]bool{"low": true, "moderate": true, "severe": true, "extreme": true}

	for i := range enriched {
		r := &enriched[i]
		pf := func(format string, args ...any) {
			p.errorf("record %d (ID %s): "+format, append([]any{i, r.ID}, args...)...)
		}

		checkMeasurementBounds(pf, r)

		if r.WetBulbC == nil {
			if r.HeatRisk != "" {
				pf("heat_risk is %q but wet_bulb_c is null", r.HeatRisk)
			}
			continue
		}
		if !validRisks[r.HeatRisk] {
			pf("heat_risk %q not in {low, moderate, severe, extreme}", r.HeatRisk)
		}
		// A wet-bulb estimate never exceeds the dry-bulb input by more than the
		// approximation's error margin.
		if r.TemperatureC != nil && *r.WetBulbC > *r.TemperatureC+1.5 {
			pf("wet_bulb_c %.2f exceeds temperature_c %.2f", *r.WetBulbC, *r.TemperatureC)
		}
		if r.ProcessedAt.IsZero() {
			pf("processed_at is zero")
		}
	}

	return p
}

func checkMeasurementBounds(pf func(string, ...any), r *domain.StationReading) {
	if r.TemperatureC != nil {
		if *r.TemperatureC < domain.TemperatureMinC || *r.TemperatureC > domain.TemperatureMaxC {
			pf("temperature_c %.2f outside [%g, %g]", *r.TemperatureC, domain.TemperatureMinC, domain.TemperatureMaxC)
		}
	}
	if r.HumidityPct != nil {
		if *r.HumidityPct < domain.HumidityMinPct || *r.HumidityPct > domain.HumidityMaxPct {
			pf("humidity_pct %.2f outside [%g, %g]", *r.HumidityPct, domain.HumidityMinPct, domain.HumidityMaxPct)
		}
	}
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptrFloatEq(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEq(*a, *b)
}

func ptrFloat(v *float64) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%.4f", *v)
}
