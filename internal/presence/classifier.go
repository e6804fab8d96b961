package presence

import (
	"sort"
	"time"

	"putping/pkg/geo"
)

// Tier is the visual bucket a visible record lands in.
type Tier int

const (
	TierSelf Tier = iota
	TierNear
	TierFar
)

func (t Tier) String() string {
	switch t {
	case TierSelf:
		return "self"
	case TierNear:
		return "near"
	default:
		return "far"
	}
}

// Color returns the marker tint for the tier.
func (t Tier) Color() string {
	switch t {
	case TierSelf:
		return "#3498db"
	case TierNear:
		return "#2ecc71"
	default:
		return "#95a5a6"
	}
}

// ClassifyConfig carries the thresholds the classifier applies.
type ClassifyConfig struct {
	VisibilityRadiusMeters float64
	NearThresholdMeters    float64
	OnlineThreshold        time.Duration
}

// Classified is one entry of the visible set.
type Classified struct {
	Identity       string
	Latitude       float64
	Longitude      float64
	Tier           Tier
	Online         bool
	DistanceMeters float64
	Record         Record
}

// Classify derives the visible set from a snapshot and the viewer's own
// record within it. Pure: same snapshot, viewer, and now always yield the
// same result. Records without a location are never visible. A viewer
// without a location sees only itself; everyone else is out of range.
// Visibility is inclusive of the radius; near is strictly under the near
// threshold. Output is sorted by identity for stable iteration.
func Classify(snap Snapshot, viewerID string, now time.Time, cfg ClassifyConfig) []Classified {
	viewer, viewerKnown := snap[viewerID]
	viewerLocated := viewerKnown && viewer.HasLocation()

	out := make([]Classified, 0, len(snap))
	for id, rec := range snap {
		if !rec.HasLocation() {
			continue
		}
		c := Classified{
			Identity:  id,
			Latitude:  *rec.Latitude,
			Longitude: *rec.Longitude,
			Online:    rec.Age(now) < cfg.OnlineThreshold,
			Record:    rec,
		}
		if id == viewerID {
			c.Tier = TierSelf
			out = append(out, c)
			continue
		}
		if !viewerLocated {
			continue
		}
		c.DistanceMeters = geo.DistanceMeters(viewer.Coordinate(), rec.Coordinate())
		if c.DistanceMeters > cfg.VisibilityRadiusMeters {
			continue
		}
		if c.DistanceMeters < cfg.NearThresholdMeters {
			c.Tier = TierNear
		} else {
			c.Tier = TierFar
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}
