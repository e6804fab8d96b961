// Package ping implements the directed, fire-and-forget notification
// channel: each ping is its own keyed child in the recipient's inbox,
// consumed and deleted on observation.
package ping

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"putping/internal/store"
)

const basePath = "pings"

// Event is one ping in flight.
type Event struct {
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
	CreatedAt int64  `json:"created_at"`
}

// Channel sends and receives pings over the realtime store.
type Channel struct {
	store *store.Store
	log   zerolog.Logger
}

func NewChannel(st *store.Store, log zerolog.Logger) *Channel {
	return &Channel{
		store: st,
		log:   log.With().Str("component", "ping").Logger(),
	}
}

// Send appends a ping under the recipient's inbox. Fire-and-forget: no
// acknowledgment flows back to the sender. Two pings sent before either is
// processed stay two independent events, never one coalesced flag.
func (c *Channel) Send(recipient, sender string) {
	c.store.Push(basePath+"/"+recipient, Event{
		Recipient: recipient,
		Sender:    sender,
		CreatedAt: time.Now().UnixMilli(),
	})
	c.log.Debug().Str("from", sender).Str("to", recipient).Msg("ping sent")
}

// Subscribe invokes fn exactly once per inbox event and then deletes that
// event. Handling is idempotent per event key, so a snapshot queued before
// a deletion landed cannot re-deliver. The returned func unsubscribes.
func (c *Channel) Subscribe(identity string, fn func(Event)) (unsubscribe func()) {
	inbox := basePath + "/" + identity
	handled := make(map[string]struct{})
	return c.store.Subscribe(inbox, func(snap store.Snapshot) {
		// Prune handled keys that are gone so the set cannot grow forever.
		for key := range handled {
			if _, ok := snap[key]; !ok {
				delete(handled, key)
			}
		}
		for _, key := range sortedKeys(snap) {
			if _, done := handled[key]; done {
				continue
			}
			ev, ok := snap[key].(Event)
			if !ok {
				c.store.Remove(inbox + "/" + key)
				continue
			}
			handled[key] = struct{}{}
			fn(ev)
			c.store.Remove(inbox + "/" + key)
		}
	})
}

// Push keys are time-prefixed, so sorting replays pings in send order.
func sortedKeys(snap store.Snapshot) []string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
