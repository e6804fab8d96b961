package presence

import (
	"time"

	"putping/pkg/geo"
)

// Record is one user's presence as seen by all peers. LastActiveAt is
// client-clock milliseconds since epoch; peers compare it defensively and
// never assume cross-client ordering.
type Record struct {
	Identity     string   `json:"identity"`
	Name         string   `json:"name"`
	Gender       string   `json:"gender"`
	PhotoURL     string   `json:"photo_url,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LastActiveAt int64    `json:"last_active_at"`
}

// HasLocation reports whether the record carries a usable fix. A record
// without one may exist (awaiting first fix) but is never rendered.
func (r Record) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Coordinate returns the record's position; only valid when HasLocation.
func (r Record) Coordinate() geo.Coordinate {
	if !r.HasLocation() {
		return geo.Coordinate{}
	}
	return geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// Age returns how long ago the record was last written, clamped at zero so
// clock skew never yields a negative age.
func (r Record) Age(now time.Time) time.Duration {
	age := time.Duration(now.UnixMilli()-r.LastActiveAt) * time.Millisecond
	if age < 0 {
		return 0
	}
	return age
}

// Snapshot maps identity to last-known record. A new snapshot fully
// replaces the old one; consumers never mutate it in place.
type Snapshot map[string]Record
