package marker

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"putping/internal/presence"
)

type fakeHandle struct {
	identity string
}

type fakeRenderer struct {
	mu      sync.Mutex
	creates []string
	updates []string
	removes []string
	clicks  map[string]func(string)
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{clicks: make(map[string]func(string))}
}

func (f *fakeRenderer) Create(c presence.Classified, onClick func(string)) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, c.Identity)
	f.clicks[c.Identity] = onClick
	return &fakeHandle{identity: c.Identity}
}

func (f *fakeRenderer) Update(h Handle, c presence.Classified) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, c.Identity)
}

func (f *fakeRenderer) Remove(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, h.(*fakeHandle).identity)
}

func classified(id string, lat, lng float64, tier presence.Tier) presence.Classified {
	return presence.Classified{Identity: id, Latitude: lat, Longitude: lng, Tier: tier, Online: true}
}

func TestReconcileRemovesCreatesAndKeepsHandles(t *testing.T) {
	r := newFakeRenderer()
	m := NewManager(r, nil, zerolog.Nop())

	m.Apply([]presence.Classified{
		classified("A", 1, 1, presence.TierFar),
		classified("B", 2, 2, presence.TierNear),
	})

	hB, ok := m.Handle("B")
	if !ok {
		t.Fatal("no handle for B")
	}

	m.Apply([]presence.Classified{
		classified("B", 2, 2, presence.TierNear),
		classified("C", 3, 3, presence.TierFar),
	})

	if len(r.removes) != 1 || r.removes[0] != "A" {
		t.Errorf("removes = %v, want [A]", r.removes)
	}
	wantCreates := []string{"A", "B", "C"}
	if len(r.creates) != len(wantCreates) {
		t.Errorf("creates = %v, want %v", r.creates, wantCreates)
	}
	hB2, ok := m.Handle("B")
	if !ok {
		t.Fatal("B lost its handle")
	}
	if hB != hB2 {
		t.Error("B's handle changed across reconciliation (flicker)")
	}
	if len(r.updates) != 0 {
		t.Errorf("unchanged B was updated: %v", r.updates)
	}
	if m.Count() != 2 {
		t.Errorf("rendered count = %d, want 2", m.Count())
	}
}

func TestReconcileUpdatesInPlaceOnChange(t *testing.T) {
	r := newFakeRenderer()
	m := NewManager(r, nil, zerolog.Nop())

	m.Apply([]presence.Classified{classified("A", 1, 1, presence.TierFar)})
	h1, _ := m.Handle("A")

	m.Apply([]presence.Classified{classified("A", 1.001, 1, presence.TierNear)})
	h2, _ := m.Handle("A")

	if h1 != h2 {
		t.Error("handle recreated on position change")
	}
	if len(r.updates) != 1 || r.updates[0] != "A" {
		t.Errorf("updates = %v, want [A]", r.updates)
	}
	if len(r.removes) != 0 {
		t.Errorf("removes = %v, want none", r.removes)
	}
}

func TestReconcileUpdatesOnProfileChange(t *testing.T) {
	r := newFakeRenderer()
	m := NewManager(r, nil, zerolog.Nop())

	c := classified("A", 1, 1, presence.TierNear)
	c.Record.Name = "Old"
	m.Apply([]presence.Classified{c})

	renamed := c
	renamed.Record.Name = "New"
	m.Apply([]presence.Classified{renamed})

	if len(r.updates) != 1 {
		t.Errorf("rename produced %d updates, want 1 (popup goes stale otherwise)", len(r.updates))
	}

	withPhoto := renamed
	withPhoto.Record.PhotoURL = "https://cdn/a.jpg"
	m.Apply([]presence.Classified{withPhoto})
	if len(r.updates) != 2 {
		t.Errorf("photo change produced %d updates, want 2", len(r.updates))
	}
}

func TestClickHandlerAttachedOnCreate(t *testing.T) {
	r := newFakeRenderer()
	var clicked string
	m := NewManager(r, func(id string) { clicked = id }, zerolog.Nop())

	m.Apply([]presence.Classified{classified("A", 1, 1, presence.TierNear)})
	r.clicks["A"]("A")
	if clicked != "A" {
		t.Errorf("clicked = %q, want A", clicked)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	r := newFakeRenderer()
	m := NewManager(r, nil, zerolog.Nop())
	m.Apply([]presence.Classified{
		classified("A", 1, 1, presence.TierFar),
		classified("B", 2, 2, presence.TierFar),
	})
	m.Clear()
	if m.Count() != 0 {
		t.Errorf("count after clear = %d", m.Count())
	}
	if len(r.removes) != 2 {
		t.Errorf("removes = %v, want both", r.removes)
	}
}
