// Command genmock writes a 24-hour window of synthetic snapshot fixtures in
// the mixed row shapes the upstream produces: keyed objects with varying key
// names, positional arrays, numeric strings, millisecond timestamps, and a
// sprinkling of rows normalization must reject. It runs the real domain
// normalizer over the output and prints the counts tests should expect.
//
// Usage:
//
//	go run ./cmd/genmock -out internal/pipeline/testdata/generated -objects 25
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/adapter/snapshot"
	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// fixtureNow is the reference time fixtures are generated against.
var fixtureNow = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)

const hours = 24

// balloon is a synthetic object drifting on a constant heading.
type balloon struct {
	id         string
	lat, lon   float64
	dLat, dLon float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for <HH>.json fixtures")
	objects := flag.Int("objects", 25, "number of balloons")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" || *objects <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -objects")
	}

	// Fixed clock so synthesized timestamps match the fixture reference time.
	domain.SetClock(clockwork.NewFakeClockAt(fixtureNow))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	fleet := make([]balloon, *objects)
	for i := range fleet {
		fleet[i] = balloon{
			id:   fmt.Sprintf("WB-%03d", i+1),
			lat:  rng.Float64()*140 - 70,
			lon:  rng.Float64()*340 - 170,
			dLat: rng.Float64()*0.6 - 0.3,
			dLon: rng.Float64()*1.6 - 0.8,
		}
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	var raw, kept int
	for h := range hours {
		rows := hourRows(rng, fleet, h)
		for i, r := range rows {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal hour %d row %d: %w", h, i, err)
			}
			if _, ok := domain.NormalizeRow(domain.DecodeRow(data), h, i, time.Time{}); ok {
				kept++
			}
		}
		raw += len(rows)

		path := filepath.Join(*out, snapshot.HourLabel(h)+".json")
		if err := writeJSON(path, rows); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	fmt.Println("=== Stats for updating test assertions ===")
	fmt.Printf("Hours: %d\n", hours)
	fmt.Printf("Objects: %d\n", *objects)
	fmt.Printf("Raw rows: %d\n", raw)
	fmt.Printf("Kept rows: %d\n", kept)
	fmt.Printf("Reference time: %s\n", fixtureNow.Format(time.RFC3339))
	return nil
}

// hourRows renders every balloon's position h hours ago. The row shape
// rotates with the balloon index so each hour mixes all variants.
func hourRows(rng *rand.Rand, fleet []balloon, h int) []any {
	ts := fixtureNow.Unix() - int64(h)*3600
	rows := make([]any, 0, len(fleet)+2)

	for i, b := range fleet {
		lat := b.lat - b.dLat*float64(h)
		lon := wrapLon(b.lon - b.dLon*float64(h))
		lat = round(lat, 4)
		lon = round(lon, 4)

		switch i % 5 {
		case 0:
			rows = append(rows, map[string]any{"id": b.id, "lat": lat, "lon": lon, "ts": ts})
		case 1:
			rows = append(rows, map[string]any{"balloon_id": b.id, "latitude": lat, "longitude": lon, "timestamp": ts * 1000})
		case 2:
			rows = append(rows, map[string]any{"name": b.id, "y": fmt.Sprint(lat), "x": fmt.Sprint(lon), "time": time.Unix(ts, 0).UTC().Format(time.RFC3339)})
		case 3:
			rows = append(rows, map[string]any{"callsign": b.id, "lat": lat, "lng": lon})
		default:
			rows = append(rows, []any{lat, lon, round(rng.Float64()*20, 2)})
		}
	}

	// Rows normalization must reject.
	if h%3 == 0 {
		rows = append(rows, map[string]any{"id": "bad-lat", "lat": 123.4, "lon": 10})
	}
	if h%4 == 1 {
		rows = append(rows, []any{nil, 5})
	}
	return rows
}

func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
