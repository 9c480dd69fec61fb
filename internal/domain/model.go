package domain

import "time"

// Point is one position fix. Latitude and longitude are WGS-84 degrees and TS
// is a Unix timestamp in seconds.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	TS  int64   `json:"ts"`
}

// Observation is a normalized row: a point attributed to an object id.
type Observation struct {
	ID string
	Point
}

// IngestStats summarizes one ingestion cycle.
type IngestStats struct {
	RawRows     int `json:"raw_rows"`
	KeptRows    int `json:"kept_rows"`
	ObjectCount int `json:"object_count"`
}

// WindSample holds the most recent wind speed (km/h) and direction (degrees)
// at the 700 hPa and 500 hPa pressure levels. A nil field means the wind
// service did not supply that measurement.
type WindSample struct {
	Wind700 *float64 `json:"wind700,omitempty"`
	Dir700  *float64 `json:"dir700,omitempty"`
	Wind500 *float64 `json:"wind500,omitempty"`
	Dir500  *float64 `json:"dir500,omitempty"`
}

// IsEmpty reports whether no measurement is present.
func (w WindSample) IsEmpty() bool {
	return w.Wind700 == nil && w.Dir700 == nil && w.Wind500 == nil && w.Dir500 == nil
}

// WindResult is the outcome of enriching one trajectory.
type WindResult struct {
	WindSample
	Risk *int
}

// Diagnostics are the full-history kinematics of a trajectory.
type Diagnostics struct {
	DriftKmh   *float64 `json:"drift_kmh,omitempty"`
	HeadingDeg *float64 `json:"heading_deg,omitempty"`
	AgeSec     *int64   `json:"age_sec,omitempty"`
	Stale      bool     `json:"stale"`
	GapKm      float64  `json:"gap_km"`
	Gap        bool     `json:"gap"`
}

// Trajectory is the ordered point history of one object plus everything
// derived from it. Wind fields and Risk stay nil until enrichment succeeds
// for the object.
type Trajectory struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Diagnostics
	WindSample
	Risk *int `json:"risk,omitempty"`
}

// Latest returns the most recent point, if any.
func (t Trajectory) Latest() (Point, bool) {
	if len(t.Points) == 0 {
		return Point{}, false
	}
	return t.Points[len(t.Points)-1], true
}

// NewTrajectory derives diagnostics for an already ordered point history.
func NewTrajectory(id string, points []Point, now time.Time) Trajectory {
	return Trajectory{
		ID:          id,
		Points:      points,
		Diagnostics: Derive(points, now),
	}
}

// Snapshot is the published result of one ingestion cycle. A snapshot is
// never mutated after publication; later transitions produce a new value.
type Snapshot struct {
	CycleID      string       `json:"cycle_id"`
	BuiltAt      time.Time    `json:"built_at"`
	Stats        IngestStats  `json:"stats"`
	Trajectories []Trajectory `json:"trajectories"`
}

// Find returns the trajectory with the given id.
func (s *Snapshot) Find(id string) (Trajectory, bool) {
	for _, t := range s.Trajectories {
		if t.ID == id {
			return t, true
		}
	}
	return Trajectory{}, false
}
