package marker

import (
	"sync"
	"time"
)

// ZoomController keeps at most one marker zoomed. Clicking a marker zooms
// it and un-zooms whichever was zoomed before. A background click or a
// cancel input un-zooms, except inside the debounce window right after a
// marker click, so one physical tap cannot open and instantly close a pin.
type ZoomController struct {
	mu        sync.Mutex
	zoomed    string
	lastClick time.Time
	debounce  time.Duration
	onChange  func(identity string, zoomed bool)
}

// NewZoomController builds a controller; onChange fires once per state
// transition (may be nil).
func NewZoomController(debounce time.Duration, onChange func(identity string, zoomed bool)) *ZoomController {
	return &ZoomController{debounce: debounce, onChange: onChange}
}

// ClickMarker zooms identity, forcing any other zoomed marker back to
// normal first.
func (z *ZoomController) ClickMarker(identity string, now time.Time) {
	z.mu.Lock()
	prev := z.zoomed
	z.zoomed = identity
	z.lastClick = now
	z.mu.Unlock()
	if prev == identity {
		return
	}
	if prev != "" {
		z.notify(prev, false)
	}
	z.notify(identity, true)
}

// ClickBackground un-zooms the current marker unless the click lands inside
// the debounce window after a marker click.
func (z *ZoomController) ClickBackground(now time.Time) {
	z.mu.Lock()
	if z.zoomed == "" || now.Sub(z.lastClick) <= z.debounce {
		z.mu.Unlock()
		return
	}
	prev := z.zoomed
	z.zoomed = ""
	z.mu.Unlock()
	z.notify(prev, false)
}

// Cancel un-zooms unconditionally (escape input).
func (z *ZoomController) Cancel() {
	z.mu.Lock()
	prev := z.zoomed
	z.zoomed = ""
	z.mu.Unlock()
	if prev != "" {
		z.notify(prev, false)
	}
}

// Zoomed returns the identity of the zoomed marker, or "".
func (z *ZoomController) Zoomed() string {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.zoomed
}

// Forget drops zoom state for a marker that left the rendered set.
func (z *ZoomController) Forget(identity string) {
	z.mu.Lock()
	if z.zoomed != identity {
		z.mu.Unlock()
		return
	}
	z.zoomed = ""
	z.mu.Unlock()
	z.notify(identity, false)
}

func (z *ZoomController) notify(identity string, zoomed bool) {
	if z.onChange != nil {
		z.onChange(identity, zoomed)
	}
}
