package marker

import (
	"testing"
	"time"
)

const debounce = 350 * time.Millisecond

func TestZoomMutualExclusion(t *testing.T) {
	var events []string
	z := NewZoomController(debounce, func(id string, zoomed bool) {
		state := "normal"
		if zoomed {
			state = "zoomed"
		}
		events = append(events, id+":"+state)
	})
	now := time.Now()

	z.ClickMarker("X", now)
	z.ClickMarker("Y", now.Add(time.Second))

	if z.Zoomed() != "Y" {
		t.Errorf("zoomed = %q, want Y", z.Zoomed())
	}
	want := []string{"X:zoomed", "X:normal", "Y:zoomed"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestBackgroundClickAfterDebounceUnzooms(t *testing.T) {
	z := NewZoomController(debounce, nil)
	now := time.Now()
	z.ClickMarker("Y", now)
	z.ClickBackground(now.Add(debounce + time.Millisecond))
	if z.Zoomed() != "" {
		t.Errorf("zoomed = %q, want none", z.Zoomed())
	}
}

func TestBackgroundClickWithinDebounceIgnored(t *testing.T) {
	z := NewZoomController(debounce, nil)
	now := time.Now()
	z.ClickMarker("Y", now)
	z.ClickBackground(now.Add(100 * time.Millisecond))
	if z.Zoomed() != "Y" {
		t.Errorf("zoomed = %q, want Y (same tap must not close the pin)", z.Zoomed())
	}
}

func TestCancelAlwaysUnzooms(t *testing.T) {
	z := NewZoomController(debounce, nil)
	now := time.Now()
	z.ClickMarker("Y", now)
	z.Cancel()
	if z.Zoomed() != "" {
		t.Errorf("zoomed = %q after cancel", z.Zoomed())
	}
}

func TestClickSameMarkerKeepsZoom(t *testing.T) {
	fired := 0
	z := NewZoomController(debounce, func(string, bool) { fired++ })
	now := time.Now()
	z.ClickMarker("X", now)
	z.ClickMarker("X", now.Add(time.Second))
	if z.Zoomed() != "X" {
		t.Errorf("zoomed = %q, want X", z.Zoomed())
	}
	if fired != 1 {
		t.Errorf("onChange fired %d times, want 1", fired)
	}
}

func TestForgetClearsVanishedMarker(t *testing.T) {
	z := NewZoomController(debounce, nil)
	z.ClickMarker("X", time.Now())
	z.Forget("other") // no-op
	if z.Zoomed() != "X" {
		t.Fatal("forget of another marker cleared zoom")
	}
	z.Forget("X")
	if z.Zoomed() != "" {
		t.Error("forget did not clear zoom")
	}
}
