package domain

import "strconv"

// ExportHeader is the column order of tabular exports.
var ExportHeader = []string{"id", "lat", "lon", "speed_kmh", "bearing_deg", "risk", "stale"}

// ExportRow is one trajectory flattened to its latest position.
type ExportRow struct {
	ID         string
	Lat        float64
	Lon        float64
	SpeedKmh   *float64
	BearingDeg *float64
	Risk       *int
	Stale      bool
}

// ExportRows flattens the selected trajectories. An empty ids selects all.
// Trajectories without points are skipped.
func ExportRows(trajs []Trajectory, ids []string) []ExportRow {
	var want map[string]bool
	if len(ids) > 0 {
		want = make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
	}

	rows := make([]ExportRow, 0, len(trajs))
	for _, t := range trajs {
		if want != nil && !want[t.ID] {
			continue
		}
		latest, ok := t.Latest()
		if !ok {
			continue
		}
		rows = append(rows, ExportRow{
			ID:         t.ID,
			Lat:        latest.Lat,
			Lon:        latest.Lon,
			SpeedKmh:   t.DriftKmh,
			BearingDeg: t.HeadingDeg,
			Risk:       t.Risk,
			Stale:      t.Stale,
		})
	}
	return rows
}

// Record renders the row in ExportHeader order. Absent values are empty.
func (r ExportRow) Record() []string {
	return []string{
		r.ID,
		strconv.FormatFloat(r.Lat, 'f', 5, 64),
		strconv.FormatFloat(r.Lon, 'f', 5, 64),
		formatOptional(r.SpeedKmh, 1),
		formatOptional(r.BearingDeg, 0),
		formatOptionalInt(r.Risk),
		strconv.FormatBool(r.Stale),
	}
}

func formatOptional(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
