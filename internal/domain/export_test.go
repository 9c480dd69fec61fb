package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRows(t *testing.T) {
	trajs := []Trajectory{
		{ID: "a", Points: []Point{{Lat: 1, Lon: 2, TS: 1}, {Lat: 3, Lon: 4, TS: 2}}, Risk: intPtr(7)},
		{ID: "b", Points: []Point{{Lat: -5, Lon: 6, TS: 1}}},
		{ID: "c"},
	}
	trajs[0].DriftKmh = f(12.34)
	trajs[0].HeadingDeg = f(271.6)
	trajs[0].Stale = true

	rows := ExportRows(trajs, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "3.00000", "4.00000", "12.3", "272", "7", "true"}, rows[0].Record())
	assert.Equal(t, []string{"b", "-5.00000", "6.00000", "", "", "", "false"}, rows[1].Record())

	selected := ExportRows(trajs, []string{"b", "c"})
	require.Len(t, selected, 1)
	assert.Equal(t, "b", selected[0].ID)
	assert.Len(t, ExportHeader, len(rows[0].Record()))
}
