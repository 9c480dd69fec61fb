package domain

import (
	"slices"
	"time"
)

// Grouped accumulates observations by object id, remembering the order in
// which ids were first seen.
type Grouped struct {
	order  []string
	points map[string][]Point
}

// NewGrouped returns an empty Grouped.
func NewGrouped() *Grouped {
	return &Grouped{points: make(map[string][]Point)}
}

// Add appends an observation to its object's point list.
func (g *Grouped) Add(obs Observation) {
	if _, seen := g.points[obs.ID]; !seen {
		g.order = append(g.order, obs.ID)
	}
	g.points[obs.ID] = append(g.points[obs.ID], obs.Point)
}

// IDs returns object ids in first-seen order.
func (g *Grouped) IDs() []string {
	return slices.Clone(g.order)
}

// Points returns the unordered points recorded for id.
func (g *Grouped) Points(id string) []Point {
	return g.points[id]
}

// Len returns the number of distinct object ids.
func (g *Grouped) Len() int {
	return len(g.order)
}

// OrderPoints sorts points by timestamp and drops any point whose timestamp
// equals one already kept. The sort is stable, so among equal timestamps the
// first encountered wins. The input slice is not modified.
func OrderPoints(points []Point) []Point {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		switch {
		case a.TS < b.TS:
			return -1
		case a.TS > b.TS:
			return 1
		default:
			return 0
		}
	})

	out := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].TS == p.TS {
			continue
		}
		out = append(out, p)
	}
	return out
}

// BuildTrajectories orders and deduplicates every object's points.
func BuildTrajectories(g *Grouped) map[string][]Point {
	out := make(map[string][]Point, g.Len())
	for _, id := range g.order {
		out[id] = OrderPoints(g.points[id])
	}
	return out
}

// AssembleTrajectories builds trajectories in first-seen id order and derives
// diagnostics for each relative to now.
func AssembleTrajectories(g *Grouped, now time.Time) []Trajectory {
	built := BuildTrajectories(g)
	out := make([]Trajectory, 0, len(built))
	for _, id := range g.order {
		out = append(out, NewTrajectory(id, built[id], now))
	}
	return out
}
