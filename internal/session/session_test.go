package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"putping/config"
	"putping/internal/marker"
	"putping/internal/ping"
	"putping/internal/presence"
	"putping/internal/store"
)

type recordedMarker struct {
	c       presence.Classified
	onClick func(string)
}

type recordingRenderer struct {
	mu      sync.Mutex
	markers map[string]*recordedMarker
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{markers: make(map[string]*recordedMarker)}
}

func (r *recordingRenderer) Create(c presence.Classified, onClick func(string)) marker.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := &recordedMarker{c: c, onClick: onClick}
	r.markers[c.Identity] = m
	return m
}

func (r *recordingRenderer) Update(h marker.Handle, c presence.Classified) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.(*recordedMarker).c = c
}

func (r *recordingRenderer) Remove(h marker.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.markers, h.(*recordedMarker).c.Identity)
}

func (r *recordingRenderer) get(identity string) (presence.Classified, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.markers[identity]
	if !ok {
		return presence.Classified{}, false
	}
	return m.c, true
}

func (r *recordingRenderer) click(identity string) bool {
	r.mu.Lock()
	m, ok := r.markers[identity]
	r.mu.Unlock()
	if !ok {
		return false
	}
	m.onClick(identity)
	return true
}

func testConfig() *config.Config {
	return &config.Config{
		Presence: config.PresenceConfig{
			LivenessThreshold: 60 * time.Second,
			SweepInterval:     30 * time.Second,
			OnlineThreshold:   30 * time.Second,
			HeartbeatInterval: time.Hour, // publishes driven by UpdateLocation in tests
			GeoTimeout:        time.Second,
		},
		Map: config.MapConfig{
			VisibilityRadiusMeters: 5000,
			NearThresholdMeters:    500,
			ZoomDebounce:           350 * time.Millisecond,
		},
		Ping: config.PingConfig{
			BannerDuration: 50 * time.Millisecond,
		},
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func publishPeer(svc *presence.Service, identity string, lat, lng float64) {
	rec := presence.Record{
		Identity:     identity,
		Name:         identity,
		LastActiveAt: time.Now().UnixMilli(),
	}
	rec.Latitude = &lat
	rec.Longitude = &lng
	svc.Publish(rec)
}

func TestSessionRendersNearbyPeer(t *testing.T) {
	st := store.New()
	defer st.Close()
	svc := presence.NewService(st, zerolog.Nop())
	pings := ping.NewChannel(st, zerolog.Nop())
	renderer := newRecordingRenderer()

	s := New("viewer", presence.Record{Name: "Me"}, testConfig(),
		svc, pings, renderer, nil, nil, nil, zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())

	s.UpdateLocation(50.088, 14.420)
	publishPeer(svc, "peer", 50.0885, 14.4205) // roughly 65 m away

	waitFor(t, func() bool {
		_, ok := renderer.get("peer")
		return ok
	}, "peer marker never rendered")

	peer, _ := renderer.get("peer")
	if peer.Tier != presence.TierNear {
		t.Errorf("peer tier = %v, want near", peer.Tier)
	}
	if peer.Tier.Color() != "#2ecc71" {
		t.Errorf("peer color = %q, want green", peer.Tier.Color())
	}
	if !peer.Online {
		t.Error("freshly active peer not online")
	}

	self, ok := renderer.get("viewer")
	if !ok {
		t.Fatal("own marker never rendered")
	}
	if self.Tier != presence.TierSelf {
		t.Errorf("own tier = %v, want self", self.Tier)
	}
}

func TestSessionClickSendsPingAndZooms(t *testing.T) {
	st := store.New()
	defer st.Close()
	svc := presence.NewService(st, zerolog.Nop())
	pings := ping.NewChannel(st, zerolog.Nop())
	renderer := newRecordingRenderer()

	s := New("viewer", presence.Record{}, testConfig(),
		svc, pings, renderer, nil, nil, nil, zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())

	s.UpdateLocation(50.088, 14.420)
	publishPeer(svc, "peer", 50.0885, 14.4205)

	waitFor(t, func() bool {
		_, ok := renderer.get("peer")
		return ok
	}, "peer marker never rendered")

	if !renderer.click("peer") {
		t.Fatal("no click handler on peer marker")
	}
	if s.Zoomed() != "peer" {
		t.Errorf("zoomed = %q, want peer", s.Zoomed())
	}
	waitFor(t, func() bool {
		return len(st.Get("pings/peer")) == 1
	}, "ping never landed in peer inbox")

	// Clicking the own marker zooms but never self-pings.
	if !renderer.click("viewer") {
		t.Fatal("no click handler on own marker")
	}
	if s.Zoomed() != "viewer" {
		t.Errorf("zoomed = %q, want viewer", s.Zoomed())
	}
	time.Sleep(50 * time.Millisecond)
	if got := len(st.Get("pings/viewer")); got != 0 {
		t.Errorf("self-click produced %d pings", got)
	}
}

func TestSessionZoomForgottenWhenPeerVanishes(t *testing.T) {
	st := store.New()
	defer st.Close()
	svc := presence.NewService(st, zerolog.Nop())
	pings := ping.NewChannel(st, zerolog.Nop())
	renderer := newRecordingRenderer()

	s := New("viewer", presence.Record{}, testConfig(),
		svc, pings, renderer, nil, nil, nil, zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())

	s.UpdateLocation(50.088, 14.420)
	publishPeer(svc, "peer", 50.0885, 14.4205)
	waitFor(t, func() bool {
		_, ok := renderer.get("peer")
		return ok
	}, "peer marker never rendered")

	s.ClickMarker("peer")
	svc.Remove("peer")

	waitFor(t, func() bool { return s.Zoomed() == "" }, "zoom kept on vanished marker")
	if _, ok := renderer.get("peer"); ok {
		t.Error("vanished peer still rendered")
	}
}

func TestSessionCloseRemovesOwnRecord(t *testing.T) {
	st := store.New()
	defer st.Close()
	svc := presence.NewService(st, zerolog.Nop())
	pings := ping.NewChannel(st, zerolog.Nop())
	renderer := newRecordingRenderer()

	s := New("viewer", presence.Record{}, testConfig(),
		svc, pings, renderer, nil, nil, nil, zerolog.Nop())
	s.Start(context.Background())
	s.UpdateLocation(50.088, 14.420)

	waitFor(t, func() bool {
		_, ok := svc.Snapshot()["viewer"]
		return ok
	}, "own record never published")

	s.Close()
	if _, ok := svc.Snapshot()["viewer"]; ok {
		t.Error("own record survived session close")
	}
	renderer.mu.Lock()
	remaining := len(renderer.markers)
	renderer.mu.Unlock()
	if remaining != 0 {
		t.Error("markers survived session close")
	}
}

func TestManagerReplacesSessionOnReattach(t *testing.T) {
	st := store.New()
	defer st.Close()
	svc := presence.NewService(st, zerolog.Nop())
	pings := ping.NewChannel(st, zerolog.Nop())
	m := NewManager(zerolog.Nop())
	defer m.CloseAll()

	first := New("viewer", presence.Record{}, testConfig(),
		svc, pings, newRecordingRenderer(), nil, nil, nil, zerolog.Nop())
	second := New("viewer", presence.Record{}, testConfig(),
		svc, pings, newRecordingRenderer(), nil, nil, nil, zerolog.Nop())

	m.Attach(context.Background(), first)
	m.Attach(context.Background(), second)

	got, ok := m.Get("viewer")
	if !ok || got != second {
		t.Fatal("reattach did not replace the session")
	}
	first.mu.Lock()
	closed := first.closed
	first.mu.Unlock()
	if !closed {
		t.Error("previous session left open")
	}

	m.Detach(second)
	if _, ok := m.Get("viewer"); ok {
		t.Error("detached session still registered")
	}
}
