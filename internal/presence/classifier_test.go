package presence

import (
	"math"
	"testing"
	"time"

	"putping/pkg/geo"
)

var testCfg = ClassifyConfig{
	VisibilityRadiusMeters: 5000,
	NearThresholdMeters:    500,
	OnlineThreshold:        30 * time.Second,
}

func rec(id string, lat, lng float64, lastActive time.Time) Record {
	return Record{
		Identity:     id,
		Latitude:     &lat,
		Longitude:    &lng,
		LastActiveAt: lastActive.UnixMilli(),
	}
}

// latAtMeters returns a latitude north of base such that the haversine
// distance from (base, lng) is exactly m meters (pure-latitude offsets are
// exact on the sphere).
func latAtMeters(base, m float64) float64 {
	return base + (m/geo.EarthRadiusMeters)*180/math.Pi
}

func find(set []Classified, id string) (Classified, bool) {
	for _, c := range set {
		if c.Identity == id {
			return c, true
		}
	}
	return Classified{}, false
}

func TestClassifySelfVsNearAtSamePoint(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		"viewer": rec("viewer", 50.0, 14.0, now),
		"other":  rec("other", 50.0, 14.0, now),
	}
	set := Classify(snap, "viewer", now, testCfg)

	self, ok := find(set, "viewer")
	if !ok || self.Tier != TierSelf {
		t.Fatalf("viewer tier = %v, want self", self.Tier)
	}
	other, ok := find(set, "other")
	if !ok || other.Tier != TierNear {
		t.Fatalf("other at distance 0 tier = %v, want near", other.Tier)
	}
}

func TestClassifyVisibilityBoundary(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		"viewer": rec("viewer", 50.0, 14.0, now),
		"in":     rec("in", latAtMeters(50.0, 4999.99), 14.0, now),
		"out":    rec("out", latAtMeters(50.0, 5000.01), 14.0, now),
	}
	set := Classify(snap, "viewer", now, testCfg)

	if c, ok := find(set, "in"); !ok {
		t.Error("candidate at 4999.99 m excluded")
	} else if c.Tier != TierFar {
		t.Errorf("candidate at 4999.99 m tier = %v, want far", c.Tier)
	}
	if _, ok := find(set, "out"); ok {
		t.Error("candidate at 5000.01 m included")
	}
}

func TestClassifyNearBoundary(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		"viewer": rec("viewer", 50.0, 14.0, now),
		"near":   rec("near", latAtMeters(50.0, 499), 14.0, now),
		"far":    rec("far", latAtMeters(50.0, 501), 14.0, now),
	}
	set := Classify(snap, "viewer", now, testCfg)
	if c, _ := find(set, "near"); c.Tier != TierNear {
		t.Errorf("499 m tier = %v, want near", c.Tier)
	}
	if c, _ := find(set, "far"); c.Tier != TierFar {
		t.Errorf("501 m tier = %v, want far", c.Tier)
	}
}

func TestClassifyOnlineIsCosmetic(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		"viewer": rec("viewer", 50.0, 14.0, now),
		"fresh":  rec("fresh", 50.0, 14.0, now.Add(-29*time.Second)),
		"stale":  rec("stale", 50.0, 14.0, now.Add(-31*time.Second)),
	}
	set := Classify(snap, "viewer", now, testCfg)
	if c, _ := find(set, "fresh"); !c.Online {
		t.Error("fresh record not online")
	}
	c, ok := find(set, "stale")
	if !ok {
		t.Fatal("stale-but-live record must still be visible")
	}
	if c.Online {
		t.Error("stale record marked online")
	}
}

func TestClassifyViewerWithoutLocationSeesOnlySelf(t *testing.T) {
	now := time.Now()
	viewer := Record{Identity: "viewer", LastActiveAt: now.UnixMilli()}
	snap := Snapshot{
		"viewer": viewer,
		"other":  rec("other", 50.0, 14.0, now),
	}
	set := Classify(snap, "viewer", now, testCfg)
	// Self has no location either, so nothing at all is rendered.
	if len(set) != 0 {
		t.Errorf("viewer without location: visible set = %v, want empty", set)
	}
}

func TestClassifyRecordWithoutLocationNeverRendered(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		"viewer": rec("viewer", 50.0, 14.0, now),
		"nofix":  {Identity: "nofix", LastActiveAt: now.UnixMilli()},
	}
	set := Classify(snap, "viewer", now, testCfg)
	if _, ok := find(set, "nofix"); ok {
		t.Error("record without location was rendered")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		"viewer": rec("viewer", 50.0, 14.0, now),
		"b":      rec("b", 50.001, 14.0, now),
		"a":      rec("a", 50.002, 14.0, now),
	}
	first := Classify(snap, "viewer", now, testCfg)
	for i := 0; i < 10; i++ {
		again := Classify(snap, "viewer", now, testCfg)
		if len(again) != len(first) {
			t.Fatal("non-deterministic size")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("non-deterministic output at %d: %v vs %v", j, again[j], first[j])
			}
		}
	}
}
