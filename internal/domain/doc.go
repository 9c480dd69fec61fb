// Package domain models hourly balloon position snapshots and the trajectories,
// diagnostics, and risk scores derived from them.
//
// # Data Source
//
// The upstream publishes one JSON document per hour of the last day, addressed
// by a two-digit hour label: 00.json is the most recent snapshot, 23.json the
// oldest. Each document is expected to be a JSON array of rows, but the row
// shape is not stable from hour to hour.
//
// # Row Shapes
//
// Keyed rows are JSON objects. Field names vary, so each field is read from an
// ordered list of candidate keys:
//
//	id:        id, balloon_id, balloonId, name, callsign
//	latitude:  lat, latitude, y
//	longitude: lon, lng, longitude, x
//	timestamp: ts, t, time, timestamp
//
// Positional rows are JSON arrays whose first two elements are latitude and
// longitude; any further elements (often altitude) are ignored. Positional rows
// never carry an id or a timestamp.
//
// Numbers may arrive as JSON numbers or numeric strings. Timestamps may be
// epoch seconds, epoch milliseconds, or RFC 3339 strings.
//
// # Synthesized Values
//
// A row without an id gets "b<row index>". This is positional, not identity:
// row 3 of hour 5 is unrelated to row 3 of hour 6, so feeds that omit ids can
// fragment one physical balloon into several trajectories. No stitching is
// attempted.
//
// A row without a usable timestamp gets now - hour*3600, i.e. the nominal time
// of the snapshot it came from.
//
// # Diagnostics
//
// Drift and heading are last-hop estimates between the two most recent fixes.
// A trajectory is stale when its newest fix is more than an hour old, and has a
// gap when its last hop exceeds 300 km. See [Derive].
//
// # Risk
//
// Risk combines drift speed, the mismatch between heading and the 700 hPa
// (else 500 hPa) wind direction, and 700/500 hPa wind shear into an integer in
// [0, 100]. See [ComputeRisk].
package domain
