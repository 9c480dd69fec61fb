package domain

// WindowedTrajectory is a display projection: points inside a lookback window
// with speed and bearing recomputed over that window, alongside the
// full-history staleness and gap diagnostics.
type WindowedTrajectory struct {
	ID         string   `json:"id"`
	Points     []Point  `json:"points"`
	SpeedKmh   *float64 `json:"speed_kmh,omitempty"`
	BearingDeg *float64 `json:"bearing_deg,omitempty"`
	Stale      bool     `json:"stale"`
	AgeSec     *int64   `json:"age_sec,omitempty"`
	Gap        bool     `json:"gap"`
	GapKm      float64  `json:"gap_km"`
	Risk       *int     `json:"risk,omitempty"`
	WindSample
}

// Window keeps the points with TS >= cutoff, preserving order. The result is
// never nil.
func Window(points []Point, cutoff int64) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.TS >= cutoff {
			out = append(out, p)
		}
	}
	return out
}

// Project applies Window to a trajectory and recomputes last-hop speed and
// bearing over the windowed points.
func Project(t Trajectory, cutoff int64) WindowedTrajectory {
	w := WindowedTrajectory{
		ID:         t.ID,
		Points:     Window(t.Points, cutoff),
		Stale:      t.Stale,
		AgeSec:     t.AgeSec,
		Gap:        t.Gap,
		GapKm:      t.GapKm,
		Risk:       t.Risk,
		WindSample: t.WindSample,
	}
	if hop, ok := LastHop(w.Points); ok {
		speed, bearing := hop.DriftKmh, hop.HeadingDeg
		w.SpeedKmh = &speed
		w.BearingDeg = &bearing
	}
	return w
}

// ProjectAll projects every trajectory with the same cutoff.
func ProjectAll(trajs []Trajectory, cutoff int64) []WindowedTrajectory {
	out := make([]WindowedTrajectory, 0, len(trajs))
	for _, t := range trajs {
		out = append(out, Project(t, cutoff))
	}
	return out
}
