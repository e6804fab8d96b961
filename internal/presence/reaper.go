package presence

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reaper periodically deletes presence records whose age exceeds the
// liveness threshold. Eviction acts on the shared store, not a local hide:
// whichever peer notices staleness first removes the record for everyone.
// Racing deleters are fine (delete of an absent key is a no-op), and
// self-eviction when the own heartbeat stops is accepted behavior.
type Reaper struct {
	svc      *Service
	interval time.Duration
	liveness time.Duration
	log      zerolog.Logger
}

func NewReaper(svc *Service, interval, liveness time.Duration, log zerolog.Logger) *Reaper {
	return &Reaper{
		svc:      svc,
		interval: interval,
		liveness: liveness,
		log:      log.With().Str("component", "reaper").Logger(),
	}
}

// Run sweeps until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(time.Now())
		}
	}
}

// Sweep evicts every record strictly older than the liveness threshold and
// returns the evicted identities.
func (r *Reaper) Sweep(now time.Time) []string {
	var evicted []string
	for id, rec := range r.svc.Snapshot() {
		if rec.Age(now) <= r.liveness {
			continue
		}
		r.svc.Remove(id)
		evicted = append(evicted, id)
	}
	if len(evicted) > 0 {
		r.log.Debug().Strs("identities", evicted).Msg("evicted stale presence")
	}
	return evicted
}
