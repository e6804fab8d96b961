package presence

import (
	"github.com/rs/zerolog"

	"putping/internal/store"
)

const basePath = "presence"

// Service is the client view of the shared presence tree: full-replace
// writes of the own record, delete by identity, and snapshot subscriptions.
type Service struct {
	store *store.Store
	log   zerolog.Logger
}

func NewService(st *store.Store, log zerolog.Logger) *Service {
	return &Service{
		store: st,
		log:   log.With().Str("component", "presence").Logger(),
	}
}

// Publish unconditionally overwrites the record's node. Records are full
// replacements, never merges.
func (s *Service) Publish(rec Record) {
	if rec.Identity == "" {
		s.log.Warn().Msg("dropping presence record without identity")
		return
	}
	s.store.Write(basePath+"/"+rec.Identity, rec)
}

// Remove deletes the presence record for identity from the shared store.
// Removing an absent identity is a no-op.
func (s *Service) Remove(identity string) {
	s.store.Remove(basePath + "/" + identity)
}

// Snapshot returns the current presence view.
func (s *Service) Snapshot() Snapshot {
	return toSnapshot(s.store.Get(basePath))
}

// Subscribe delivers the full presence snapshot to fn on every change,
// in observation order. The returned func unsubscribes.
func (s *Service) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return s.store.Subscribe(basePath, func(raw store.Snapshot) {
		fn(toSnapshot(raw))
	})
}

func toSnapshot(raw store.Snapshot) Snapshot {
	snap := make(Snapshot, len(raw))
	for id, v := range raw {
		rec, ok := v.(Record)
		if !ok {
			continue
		}
		snap[id] = rec
	}
	return snap
}
