// Command validate runs the ingestion path over a directory of hourly
// snapshot fixtures and checks the properties every published cycle must
// hold: stats consistency, strictly ordered trajectories, coordinate bounds,
// diagnostic thresholds, and risk bounds.
//
// Usage:
//
//	go run ./cmd/validate -dir internal/pipeline/testdata/generated -now 2024-04-26T12:00:00Z
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/adapter/snapshot"
	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/couchcryptid/balloon-drift-service/internal/observability"
	"github.com/couchcryptid/balloon-drift-service/internal/pipeline"
)

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
	dir := flag.String("dir", "", "directory containing <HH>.json snapshot fixtures")
	hours := flag.Int("hours", 24, "number of hourly snapshots to read")
	nowFlag := flag.String("now", "", "reference time (RFC 3339) the fixtures were generated against")
	flag.Parse()

	if *dir == "" || *hours < 1 || *hours > 24 {
		flag.Usage()
		os.Exit(1)
	}

	now := time.Now().UTC()
	if *nowFlag != "" {
		t, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: parse -now: %v\n", err)
			os.Exit(1)
		}
		now = t
	}

	if code := run(*dir, *hours, now); code != 0 {
		os.Exit(code)
	}
}

func run(dir string, hours int, now time.Time) int {
	fmt.Println("=== Snapshot Ingestion Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	fetcher := pipeline.NewFetcher(snapshot.NewDirSource(dir), hours, logger, observability.NewMetricsForTesting())

	grouped, stats := fetcher.FetchWindow(context.Background(), now)
	trajs := domain.AssembleTrajectories(grouped, now)

	phases := []*phase{
		validateStats(stats, grouped, trajs),
		validateOrdering(trajs),
		validateBounds(trajs),
		validateDiagnostics(trajs, now),
		validateRisk(trajs),
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
	fmt.Printf("Rows: %d raw, %d kept; objects: %d\n", stats.RawRows, stats.KeptRows, stats.ObjectCount)

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

// ── Phase 1: Stats ──

func validateStats(stats domain.IngestStats, grouped *domain.Grouped, trajs []domain.Trajectory) *phase {
	p := &phase{name: "Phase 1: Ingestion stats"}

	if stats.KeptRows > stats.RawRows {
		p.errorf("kept_rows %d exceeds raw_rows %d", stats.KeptRows, stats.RawRows)
	}
	if stats.ObjectCount != grouped.Len() {
		p.errorf("object_count %d, grouped ids %d", stats.ObjectCount, grouped.Len())
	}
	if len(trajs) != stats.ObjectCount {
		p.errorf("object_count %d, trajectories %d", stats.ObjectCount, len(trajs))
	}

	var groupedPoints int
	for _, id := range grouped.IDs() {
		groupedPoints += len(grouped.Points(id))
	}
	if groupedPoints != stats.KeptRows {
		p.errorf("kept_rows %d, grouped points %d", stats.KeptRows, groupedPoints)
	}

	var points int
	for _, t := range trajs {
		points += len(t.Points)
		if len(t.Points) == 0 {
			p.errorf("%s: empty trajectory", t.ID)
		}
	}
	if points > stats.KeptRows {
		p.errorf("trajectory points %d exceed kept_rows %d", points, stats.KeptRows)
	}
	return p
}

// ── Phase 2: Ordering ──

func validateOrdering(trajs []domain.Trajectory) *phase {
	p := &phase{name: "Phase 2: Trajectory ordering"}
	for _, t := range trajs {
		for i := 1; i < len(t.Points); i++ {
			if t.Points[i].TS <= t.Points[i-1].TS {
				p.errorf("%s point %d: ts %d not after %d", t.ID, i, t.Points[i].TS, t.Points[i-1].TS)
			}
		}
	}
	return p
}

// ── Phase 3: Bounds ──

func validateBounds(trajs []domain.Trajectory) *phase {
	p := &phase{name: "Phase 3: Coordinate bounds"}
	for _, t := range trajs {
		for i, pt := range t.Points {
			if pt.Lat < -90 || pt.Lat > 90 || pt.Lon < -180 || pt.Lon > 180 {
				p.errorf("%s point %d: (%g, %g) out of range", t.ID, i, pt.Lat, pt.Lon)
			}
		}
	}
	return p
}

// ── Phase 4: Diagnostics ──

func validateDiagnostics(trajs []domain.Trajectory, now time.Time) *phase {
	p := &phase{name: "Phase 4: Diagnostics"}
	for _, t := range trajs {
		latest, ok := t.Latest()
		if !ok {
			continue
		}
		if t.AgeSec == nil {
			p.errorf("%s: missing age", t.ID)
			continue
		}
		if want := max(now.Unix()-latest.TS, 0); *t.AgeSec != want {
			p.errorf("%s: age %d, expected %d", t.ID, *t.AgeSec, want)
		}
		if t.Stale != (*t.AgeSec > domain.StaleAfterSec) {
			p.errorf("%s: stale=%t with age %d", t.ID, t.Stale, *t.AgeSec)
		}
		if t.Gap != (t.GapKm > domain.GapThresholdKm) {
			p.errorf("%s: gap=%t with last hop %.1f km", t.ID, t.Gap, t.GapKm)
		}
		if len(t.Points) < 2 {
			if t.DriftKmh != nil || t.HeadingDeg != nil {
				p.errorf("%s: drift or heading set for a single point", t.ID)
			}
			continue
		}
		if t.DriftKmh == nil || *t.DriftKmh < 0 {
			p.errorf("%s: invalid drift", t.ID)
		}
		if t.HeadingDeg == nil || *t.HeadingDeg < 0 || *t.HeadingDeg >= 360 {
			p.errorf("%s: heading out of [0, 360)", t.ID)
		}
	}
	return p
}

// ── Phase 5: Risk ──

func validateRisk(trajs []domain.Trajectory) *phase {
	p := &phase{name: "Phase 5: Risk bounds (drift only)"}
	for _, t := range trajs {
		risk := domain.ComputeRisk(t.DriftKmh, t.HeadingDeg, domain.WindSample{})
		if t.DriftKmh == nil {
			if risk != nil {
				p.errorf("%s: risk %d without drift", t.ID, *risk)
			}
			continue
		}
		if risk == nil || *risk < 0 || *risk > 40 {
			p.errorf("%s: drift-only risk outside [0, 40]", t.ID)
		}
	}
	return p
}
