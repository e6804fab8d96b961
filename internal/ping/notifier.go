package ping

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SoundPlayer plays a named notification sound on the receiving client.
// Playback is best effort; failures are logged, never propagated.
type SoundPlayer interface {
	Play(name string) error
}

// BannerSink shows and hides transient in-UI banners.
type BannerSink interface {
	ShowBanner(id, text string)
	HideBanner(id string)
}

// Notifier turns received pings into local side effects: a sound and a
// banner that dismisses itself after a fixed duration.
type Notifier struct {
	sounds   SoundPlayer
	banners  BannerSink
	duration time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	seq    int
	timers map[string]*time.Timer
	closed bool
}

func NewNotifier(sounds SoundPlayer, banners BannerSink, duration time.Duration, log zerolog.Logger) *Notifier {
	return &Notifier{
		sounds:   sounds,
		banners:  banners,
		duration: duration,
		log:      log.With().Str("component", "notifier").Logger(),
		timers:   make(map[string]*time.Timer),
	}
}

// PingReceived surfaces one ping. Each ping gets its own banner and timer;
// simultaneous pings do not share a dismissal.
func (n *Notifier) PingReceived(ev Event) {
	if n.sounds != nil {
		if err := n.sounds.Play("ping"); err != nil {
			n.log.Warn().Err(err).Msg("notification sound blocked")
		}
	}
	if n.banners == nil {
		return
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.seq++
	id := bannerID(n.seq)
	n.timers[id] = time.AfterFunc(n.duration, func() {
		n.banners.HideBanner(id)
		n.mu.Lock()
		delete(n.timers, id)
		n.mu.Unlock()
	})
	n.mu.Unlock()
	n.banners.ShowBanner(id, ev.Sender+" pinged you")
}

// Close cancels pending banner timers on teardown.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
}

func bannerID(seq int) string {
	return "banner-" + strconv.Itoa(seq)
}
