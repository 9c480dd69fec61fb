package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// RowShape classifies a raw snapshot row before any field is read.
type RowShape int

const (
	RowUnknown RowShape = iota
	RowKeyed
	RowPositional
)

func (s RowShape) String() string {
	switch s {
	case RowKeyed:
		return "keyed"
	case RowPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// RawRow is a decoded snapshot row. Exactly one of Fields or Elems is set,
// according to Shape.
type RawRow struct {
	Shape  RowShape
	Fields map[string]json.RawMessage
	Elems  []json.RawMessage
}

var (
	idKeys   = []string{"id", "balloon_id", "balloonId", "name", "callsign"}
	latKeys  = []string{"lat", "latitude", "y"}
	lonKeys  = []string{"lon", "lng", "longitude", "x"}
	timeKeys = []string{"ts", "t", "time", "timestamp"}
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e12 seconds is tens of thousands of years out.
const epochMillisThreshold = 1e12

var jsonNull = []byte("null")

// DecodeRow classifies one raw JSON value. Objects become keyed rows, arrays
// with at least two elements become positional rows, anything else is unknown.
func DecodeRow(raw json.RawMessage) RawRow {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return RawRow{}
	}

	switch trimmed[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return RawRow{}
		}
		return RawRow{Shape: RowKeyed, Fields: fields}
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil || len(elems) < 2 {
			return RawRow{}
		}
		return RawRow{Shape: RowPositional, Elems: elems}
	default:
		return RawRow{}
	}
}

// NormalizeRow converts a decoded row into an observation. hourIndex is the
// snapshot's age in hours and rowIndex the row's position in that snapshot;
// both feed the synthesized id and timestamp. It returns false when the row
// has no finite, in-range coordinates or an unknown shape.
func NormalizeRow(row RawRow, hourIndex, rowIndex int, now time.Time) (Observation, bool) {
	if now.IsZero() {
		now = clock.Now()
	}
	fallbackTS := now.Unix() - int64(hourIndex)*3600
	fallbackID := "b" + strconv.Itoa(rowIndex)

	var lat, lon float64
	var ok bool
	obs := Observation{ID: fallbackID}
	obs.TS = fallbackTS

	switch row.Shape {
	case RowKeyed:
		if lat, ok = firstNumber(row.Fields, latKeys); !ok {
			return Observation{}, false
		}
		if lon, ok = firstNumber(row.Fields, lonKeys); !ok {
			return Observation{}, false
		}
		if id, found := firstID(row.Fields); found {
			obs.ID = id
		}
		if ts, found := firstTimestamp(row.Fields); found {
			obs.TS = ts
		}
	case RowPositional:
		if lat, ok = parseNumber(row.Elems[0]); !ok {
			return Observation{}, false
		}
		if lon, ok = parseNumber(row.Elems[1]); !ok {
			return Observation{}, false
		}
	default:
		return Observation{}, false
	}

	if !validCoordinate(lat, lon) {
		return Observation{}, false
	}
	obs.Lat = lat
	obs.Lon = lon
	return obs, true
}

// firstNumber returns the first key from keys that is present and parses as a
// number. A present key with an unparseable value does not stop the search.
func firstNumber(fields map[string]json.RawMessage, keys []string) (float64, bool) {
	for _, k := range keys {
		raw, present := fields[k]
		if !present {
			continue
		}
		if v, ok := parseNumber(raw); ok {
			return v, true
		}
	}
	return 0, false
}

func firstID(fields map[string]json.RawMessage) (string, bool) {
	for _, k := range idKeys {
		raw, present := fields[k]
		if !present {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String(), true
		}
	}
	return "", false
}

func firstTimestamp(fields map[string]json.RawMessage) (int64, bool) {
	for _, k := range timeKeys {
		raw, present := fields[k]
		if !present {
			continue
		}
		if ts, ok := parseTimestamp(raw); ok {
			return ts, true
		}
	}
	return 0, false
}

// parseNumber accepts a JSON number or a numeric string. Null, booleans and
// non-finite values are rejected.
func parseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, finite(v)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, finite(v)
}

// parseTimestamp reads epoch seconds, epoch milliseconds or an RFC 3339 string.
// Numbers that are still 1e12 or more after millisecond conversion are
// rejected.
func parseTimestamp(raw json.RawMessage) (int64, bool) {
	if v, ok := parseNumber(raw); ok {
		if math.Abs(v) >= epochMillisThreshold {
			v /= 1000
		}
		if math.Abs(v) >= epochMillisThreshold {
			return 0, false
		}
		return int64(v), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
