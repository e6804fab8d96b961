// Package session wires one user's live map together: heartbeat writes of
// the own presence record, the snapshot-to-marker pipeline, ping delivery,
// and the pin zoom state. A Session owns its subscriptions and timers
// explicitly and tears them all down on Close; nothing here is ambient
// global state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"putping/config"
	"putping/internal/geoloc"
	"putping/internal/marker"
	"putping/internal/ping"
	"putping/internal/presence"
)

// Session drives the live map for one identity.
type Session struct {
	identity string
	base     presence.Record
	cfg      *config.Config

	presence *presence.Service
	pings    *ping.Channel
	geo      *geoloc.Reported
	manager  *marker.Manager
	zoom     *marker.ZoomController
	notifier *ping.Notifier
	log      zerolog.Logger

	mu      sync.Mutex
	unsubs  []func()
	cancel  context.CancelFunc
	started bool
	closed  bool
}

// New builds a session. base carries the profile-derived record fields
// (name, gender, photo); location and lastActiveAt are stamped per write.
// renderer receives marker lifecycle events; its click callback sends a
// ping to the clicked identity.
func New(
	identity string,
	base presence.Record,
	cfg *config.Config,
	svc *presence.Service,
	pings *ping.Channel,
	renderer marker.Renderer,
	sounds ping.SoundPlayer,
	banners ping.BannerSink,
	zoomChanged func(identity string, zoomed bool),
	log zerolog.Logger,
) *Session {
	s := &Session{
		identity: identity,
		base:     base,
		cfg:      cfg,
		presence: svc,
		pings:    pings,
		geo:      geoloc.NewReported(),
		log:      log.With().Str("component", "session").Str("identity", identity).Logger(),
	}
	s.base.Identity = identity
	s.zoom = marker.NewZoomController(cfg.Map.ZoomDebounce, zoomChanged)
	s.manager = marker.NewManager(renderer, s.clickMarker, log)
	s.notifier = ping.NewNotifier(sounds, banners, cfg.Ping.BannerDuration, log)
	return s
}

// Start subscribes to presence and pings and begins the heartbeat loop.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.unsubs = append(s.unsubs,
		s.presence.Subscribe(s.applySnapshot),
		s.pings.Subscribe(s.identity, s.notifier.PingReceived),
	)
	s.mu.Unlock()
	go s.heartbeat(ctx)
}

// applySnapshot is the synchronization tick: classify, then reconcile.
// Snapshots arrive one at a time in delivery order (store guarantee), and
// Apply runs to completion before the next one is processed.
func (s *Session) applySnapshot(snap presence.Snapshot) {
	set := presence.Classify(snap, s.identity, time.Now(), presence.ClassifyConfig{
		VisibilityRadiusMeters: s.cfg.Map.VisibilityRadiusMeters,
		NearThresholdMeters:    s.cfg.Map.NearThresholdMeters,
		OnlineThreshold:        s.cfg.Presence.OnlineThreshold,
	})
	s.manager.Apply(set)
	if z := s.zoom.Zoomed(); z != "" {
		if _, ok := s.manager.Handle(z); !ok {
			s.zoom.Forget(z)
		}
	}
}

// heartbeat republishes the own record on a fixed period so it never ages
// past the liveness threshold while the session is alive. A fix that does
// not arrive within the geolocation timeout is a logged failure, not a
// hang; the record simply is not refreshed that round and the reaper may
// eventually evict it, which is accepted behavior.
func (s *Session) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Presence.HeartbeatInterval)
	defer ticker.Stop()
	s.publishOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishOnce(ctx)
		}
	}
}

func (s *Session) publishOnce(ctx context.Context) {
	pos, err := geoloc.Fetch(ctx, s.geo, s.cfg.Presence.GeoTimeout)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("no geolocation fix, skipping heartbeat")
		}
		return
	}
	s.publish(pos)
}

func (s *Session) publish(pos geoloc.Position) {
	s.mu.Lock()
	rec := s.base
	s.mu.Unlock()
	lat, lng := pos.Latitude, pos.Longitude
	rec.Latitude = &lat
	rec.Longitude = &lng
	rec.LastActiveAt = time.Now().UnixMilli()
	s.presence.Publish(rec)
}

// UpdateLocation feeds a reported fix into the session and publishes it
// immediately.
func (s *Session) UpdateLocation(lat, lng float64) {
	pos := geoloc.Position{Latitude: lat, Longitude: lng}
	s.geo.Report(pos)
	s.publish(pos)
}

// UpdateProfile refreshes the profile-derived record fields; the next
// publish carries them.
func (s *Session) UpdateProfile(name, gender, photoURL string) {
	s.mu.Lock()
	s.base.Name = name
	s.base.Gender = gender
	s.base.PhotoURL = photoURL
	s.mu.Unlock()
}

// clickMarker is the marker click affordance: zoom the pin and ping its
// owner. Clicking the own pin only zooms.
func (s *Session) clickMarker(identity string) {
	s.zoom.ClickMarker(identity, time.Now())
	if identity != s.identity {
		s.pings.Send(identity, s.identity)
	}
}

// ClickMarker handles a marker click arriving from the client.
func (s *Session) ClickMarker(identity string) { s.clickMarker(identity) }

// ClickBackground handles a map background click.
func (s *Session) ClickBackground() { s.zoom.ClickBackground(time.Now()) }

// CancelZoom handles an escape/cancel input.
func (s *Session) CancelZoom() { s.zoom.Cancel() }

// Zoomed returns the currently zoomed identity, or "".
func (s *Session) Zoomed() string { return s.zoom.Zoomed() }

// Close tears the session down: cancel timers, unsubscribe, clear rendered
// markers, and remove the own presence record from the shared store.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, unsub := range unsubs {
		unsub()
	}
	s.notifier.Close()
	s.manager.Clear()
	s.presence.Remove(s.identity)
	s.log.Debug().Msg("session closed")
}
