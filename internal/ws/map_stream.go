package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"putping/internal/marker"
	"putping/internal/presence"
	"putping/pkg/proximity"
)

// MapStream is the server-side rendering surface for one map connection.
// It implements the marker renderer plus the ping sound/banner sinks by
// emitting JSON events into the client's send queue; the browser applies
// them to the actual map engine.
type MapStream struct {
	client *Client
	radius float64

	mu      sync.Mutex
	markers map[string]*streamMarker
}

type streamMarker struct {
	identity string
	onClick  func(identity string)
}

func NewMapStream(client *Client, visibilityRadiusMeters float64) *MapStream {
	return &MapStream{
		client:  client,
		radius:  visibilityRadiusMeters,
		markers: make(map[string]*streamMarker),
	}
}

// Create emits a marker_add event and keeps the click handler so wire-level
// clicks can be dispatched to it.
func (s *MapStream) Create(c presence.Classified, onClick func(identity string)) marker.Handle {
	m := &streamMarker{identity: c.Identity, onClick: onClick}
	s.mu.Lock()
	s.markers[c.Identity] = m
	s.mu.Unlock()
	s.emit(markerEvent("marker_add", c, s.radius))
	return m
}

func (s *MapStream) Update(h marker.Handle, c presence.Classified) {
	s.emit(markerEvent("marker_update", c, s.radius))
}

func (s *MapStream) Remove(h marker.Handle) {
	m, ok := h.(*streamMarker)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.markers, m.identity)
	s.mu.Unlock()
	s.emit(map[string]interface{}{"type": "marker_remove", "identity": m.identity})
}

// Click dispatches a wire-level marker click to the handler attached at
// creation time. Clicks on markers that are no longer rendered are dropped.
func (s *MapStream) Click(identity string) {
	s.mu.Lock()
	m := s.markers[identity]
	s.mu.Unlock()
	if m != nil && m.onClick != nil {
		m.onClick(identity)
	}
}

// ZoomChanged emits the pin zoom transition for one marker.
func (s *MapStream) ZoomChanged(identity string, zoomed bool) {
	s.emit(map[string]interface{}{"type": "marker_zoom", "identity": identity, "zoomed": zoomed})
}

var errSendBufferFull = errors.New("client send buffer full")

// Play asks the client to play a cached notification sound. Best effort:
// a full send queue reports an error for the caller to log, never a panic.
func (s *MapStream) Play(name string) error {
	return s.trySend(map[string]interface{}{"type": "sound", "name": name})
}

func (s *MapStream) ShowBanner(id, text string) {
	s.emit(map[string]interface{}{"type": "banner", "id": id, "text": text})
}

func (s *MapStream) HideBanner(id string) {
	s.emit(map[string]interface{}{"type": "banner_dismiss", "id": id})
}

func (s *MapStream) emit(payload map[string]interface{}) {
	_ = s.trySend(payload)
}

func (s *MapStream) trySend(payload map[string]interface{}) error {
	data, _ := json.Marshal(payload)
	if !s.client.TrySend(data) {
		return errSendBufferFull
	}
	return nil
}

func markerEvent(typ string, c presence.Classified, radius float64) map[string]interface{} {
	return map[string]interface{}{
		"type":      typ,
		"identity":  c.Identity,
		"lat":       c.Latitude,
		"lng":       c.Longitude,
		"tier":      c.Tier.String(),
		"color":     c.Tier.Color(),
		"online":    c.Online,
		"name":      c.Record.Name,
		"photo_url": c.Record.PhotoURL,
		"proximity": proximity.Label(proximity.Progress(c.DistanceMeters, radius)),
	}
}
