// Package marker reconciles the classified presence set against whatever
// the renderer currently shows, so the rendered set exactly matches the
// classified set after every tick.
package marker

import (
	"sync"

	"github.com/rs/zerolog"

	"putping/internal/presence"
)

// Handle is the renderer's opaque reference to one rendered marker. The
// Manager owns the identity-to-handle binding exclusively; no other
// component creates or destroys rendered markers.
type Handle any

// Renderer is the map engine boundary. Create attaches the given click
// callback to the new marker; clicking a marker is how pings get sent.
type Renderer interface {
	Create(c presence.Classified, onClick func(identity string)) Handle
	Update(h Handle, c presence.Classified)
	Remove(h Handle)
}

type rendered struct {
	handle Handle
	last   presence.Classified
}

// Manager applies classified sets one at a time, in delivery order. A
// marker that stays visible across ticks keeps its handle; it is moved and
// recolored in place, never destroyed and recreated.
type Manager struct {
	mu       sync.Mutex
	renderer Renderer
	onClick  func(identity string)
	markers  map[string]rendered
	log      zerolog.Logger
}

func NewManager(r Renderer, onClick func(identity string), log zerolog.Logger) *Manager {
	return &Manager{
		renderer: r,
		onClick:  onClick,
		markers:  make(map[string]rendered),
		log:      log.With().Str("component", "marker").Logger(),
	}
}

// Apply reconciles the rendered set with the new classified set. Runs to
// completion under the lock, so a snapshot arriving mid-reconciliation
// waits its turn.
func (m *Manager) Apply(set []presence.Classified) {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := make(map[string]presence.Classified, len(set))
	for _, c := range set {
		want[c.Identity] = c
	}

	for id, r := range m.markers {
		if _, ok := want[id]; ok {
			continue
		}
		m.renderer.Remove(r.handle)
		delete(m.markers, id)
	}

	for _, c := range set {
		r, ok := m.markers[c.Identity]
		if !ok {
			m.markers[c.Identity] = rendered{
				handle: m.renderer.Create(c, m.onClick),
				last:   c,
			}
			continue
		}
		if !changed(r.last, c) {
			continue
		}
		m.renderer.Update(r.handle, c)
		r.last = c
		m.markers[c.Identity] = r
	}
}

// Handle returns the handle currently bound to identity.
func (m *Manager) Handle(identity string) (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.markers[identity]
	return r.handle, ok
}

// Count returns the number of rendered markers.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.markers)
}

// Clear removes every rendered marker, e.g. on session teardown.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.markers {
		m.renderer.Remove(r.handle)
		delete(m.markers, id)
	}
}

func changed(a, b presence.Classified) bool {
	return a.Latitude != b.Latitude ||
		a.Longitude != b.Longitude ||
		a.Tier != b.Tier ||
		a.Online != b.Online ||
		a.Record.Name != b.Record.Name ||
		a.Record.PhotoURL != b.Record.PhotoURL
}
