package domain

import "math"

// Risk model weights and normalization scales.
const (
	driftWeight    = 0.4
	mismatchWeight = 0.4
	shearWeight    = 0.2

	driftScaleKmh    = 100.0
	mismatchScaleDeg = 90.0
	shearScaleKmh    = 30.0
)

// PreferredWindDir returns the 700 hPa direction when present, else 500 hPa.
func PreferredWindDir(w WindSample) *float64 {
	if w.Dir700 != nil {
		return w.Dir700
	}
	return w.Dir500
}

// Shear returns |wind700 - wind500|, or nil when either speed is missing.
func Shear(w WindSample) *float64 {
	if w.Wind700 == nil || w.Wind500 == nil {
		return nil
	}
	s := math.Abs(*w.Wind700 - *w.Wind500)
	return &s
}

// ComputeRisk scores a trajectory in [0, 100] from its drift speed, the
// mismatch between its heading and the wind direction, and wind shear.
// Missing mismatch or shear contribute zero. Without a drift speed there is
// no score and ComputeRisk returns nil.
func ComputeRisk(driftKmh, headingDeg *float64, w WindSample) *int {
	if driftKmh == nil {
		return nil
	}

	d := clamp01(*driftKmh / driftScaleKmh)

	var m float64
	if dir := PreferredWindDir(w); dir != nil && headingDeg != nil {
		m = clamp01(AngleDelta(*headingDeg, *dir) / mismatchScaleDeg)
	}

	var s float64
	if shear := Shear(w); shear != nil {
		s = clamp01(*shear / shearScaleKmh)
	}

	score := int(math.Round((driftWeight*d + mismatchWeight*m + shearWeight*s) * 100))
	return &score
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
