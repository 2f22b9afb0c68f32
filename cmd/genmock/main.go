// Command genmock reads station observation CSV files and generates mock data
// fixtures for the ETL test suites. It uses the actual domain package so the
// enriched output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/station_readings_250714.csv \
//	  -raw-out data/mock/station_readings_250714_raw.json \
//	  -enriched-out data/mock/station_readings_250714_enriched.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heatwise/wetbulb-etl/internal/domain"
)

var baseDate = time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "station observation CSV file")
	rawOut := flag.String("raw-out", "", "output path for raw JSON fixture")
	enrichedOut := flag.String("enriched-out", "", "output path for enriched JSON fixture")
	flag.Parse()

	if *csvPath == "" || *rawOut == "" || *enrichedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -raw-out, -enriched-out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.July, 14, 16, 0, 30, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	records, enriched, err := processCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("total: %d records", len(records))

	if err := writeJSON(*rawOut, records); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*enrichedOut, enriched); err != nil {
		return fmt.Errorf("writing enriched fixture: %w", err)
	}
	log.Printf("wrote enriched fixture: %s", *enrichedOut)

	printStats(enriched)
	return nil
}

func processCSV(path string) ([]domain.RawSensorRecord, []domain.StationReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[h] = i
	}

	var records []domain.RawSensorRecord
	var enriched []domain.StationReading

	for _, row := range rows[1:] {
		rec := domain.RawSensorRecord{
			StationID:    get(row, colIdx, "StationID"),
			Time:         get(row, colIdx, "Time"),
			TemperatureC: get(row, colIdx, "TemperatureC"),
			HumidityPct:  get(row, colIdx, "HumidityPct"),
		}
		records = append(records, rec)

		// Run the actual pipeline transformation.
		rawJSON, err := json.Marshal(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal record: %w", err)
		}

		parsed, err := domain.ParseRawReading(domain.RawReading{
			Value:     rawJSON,
			Timestamp: baseDate,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("parse raw reading: %w", err)
		}

		enriched = append(enriched, domain.EnrichReading(parsed))
	}

	return records, enriched, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type stationCount struct {
	station string
	count   int
}

func printStats(readings []domain.StationReading) {
	riskCounts := map[string]int{}
	stationCounts := map[string]int{}
	var undefined, clamped int
	var minWB, maxWB float64
	haveWB := false

	for i := range readings {
		r := &readings[i]
		stationCounts[r.StationID]++
		if r.WetBulbC == nil {
			undefined++
		} else {
			riskCounts[r.HeatRisk]++
			if !haveWB || *r.WetBulbC < minWB {
				minWB = *r.WetBulbC
			}
			if !haveWB || *r.WetBulbC > maxWB {
				maxWB = *r.WetBulbC
			}
			haveWB = true
		}
		if r.InputClamped {
			clamped++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(readings))
	fmt.Printf("By heat risk: low=%d, moderate=%d, severe=%d, extreme=%d\n",
		riskCounts["low"], riskCounts["moderate"], riskCounts["severe"], riskCounts["extreme"])
	fmt.Printf("Undefined estimates: %d\n", undefined)
	fmt.Printf("Clamped inputs: %d\n", clamped)
	if haveWB {
		fmt.Printf("Wet-bulb range: %.2f to %.2f °C\n", minWB, maxWB)
	}

	sc := make([]stationCount, 0, len(stationCounts))
	for s, c := range stationCounts {
		sc = append(sc, stationCount{s, c})
	}
	sort.Slice(sc, func(i, j int) bool { return sc[i].count > sc[j].count })
	fmt.Printf("Stations (%d): ", len(sc))
	for _, s := range sc {
		fmt.Printf("%s=%d ", s.station, s.count)
	}
	fmt.Println()

	printFirstDefined(readings)
}

func printFirstDefined(readings []domain.StationReading) {
	for i := range readings {
		r := &readings[i]
		if r.WetBulbC == nil {
			continue
		}
		fmt.Printf("\nFirst reading with an estimate:\n")
		fmt.Printf("  ID: %s\n", r.ID)
		fmt.Printf("  Station: %s\n", r.StationID)
		fmt.Printf("  WetBulbC: %.4f\n", *r.WetBulbC)
		fmt.Printf("  HeatRisk: %s\n", r.HeatRisk)
		fmt.Printf("  ObservedAt: %s\n", r.ObservedAt.Format(time.RFC3339))
		fmt.Printf("  TimeBucket: %s\n", r.TimeBucket)
		return
	}
}
