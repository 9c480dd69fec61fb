package domain

import (
	"math"
	"time"
)

const (
	// StaleAfterSec is the age beyond which a trajectory's newest fix is stale.
	StaleAfterSec = 3600
	// GapThresholdKm is the last-hop distance that flags a tracking gap.
	GapThresholdKm = 300.0

	minElapsedHours = 1e-6
)

// Hop describes the movement between the two most recent points.
type Hop struct {
	DistanceKm float64
	DriftKmh   float64
	HeadingDeg float64
}

// LastHop computes distance, speed and bearing between the last two points.
// It returns false when fewer than two points are given.
func LastHop(points []Point) (Hop, bool) {
	if len(points) < 2 {
		return Hop{}, false
	}
	prev := points[len(points)-2]
	last := points[len(points)-1]

	dist := HaversineKm(prev, last)
	hours := math.Max(float64(last.TS-prev.TS)/3600, minElapsedHours)

	return Hop{
		DistanceKm: dist,
		DriftKmh:   dist / hours,
		HeadingDeg: InitialBearing(prev, last),
	}, true
}

// Derive computes drift, heading, age, staleness and gap diagnostics for an
// ordered point history relative to now.
func Derive(points []Point, now time.Time) Diagnostics {
	var d Diagnostics
	if len(points) == 0 {
		return d
	}

	last := points[len(points)-1]
	age := max(now.Unix()-last.TS, 0)
	d.AgeSec = &age
	d.Stale = age > StaleAfterSec

	hop, ok := LastHop(points)
	if !ok {
		return d
	}
	drift, heading := hop.DriftKmh, hop.HeadingDeg
	d.DriftKmh = &drift
	d.HeadingDeg = &heading
	d.GapKm = hop.DistanceKm
	d.Gap = hop.DistanceKm > GapThresholdKm
	return d
}
