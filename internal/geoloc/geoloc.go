// Package geoloc abstracts the device geolocation provider behind a
// bounded-timeout fetch: a request reports failure rather than hanging.
package geoloc

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Position is a geolocation fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Provider yields the current position or an error (denied, unavailable).
type Provider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// Func adapts a function to a Provider.
type Func func(ctx context.Context) (Position, error)

func (f Func) CurrentPosition(ctx context.Context) (Position, error) { return f(ctx) }

var ErrTimeout = errors.New("geolocation request timed out")

// Fetch asks p for a fix, giving up after timeout.
func Fetch(ctx context.Context, p Provider, timeout time.Duration) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pos, err := p.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		return Position{}, err
	}
	return pos, nil
}

// Reported is a Provider fed by positions pushed from elsewhere (e.g. the
// client reporting fixes over HTTP). CurrentPosition returns the last
// reported fix, or blocks until the first one arrives or ctx expires.
type Reported struct {
	mu    sync.Mutex
	pos   Position
	has   bool
	first chan struct{}
}

func NewReported() *Reported {
	return &Reported{first: make(chan struct{})}
}

// Report records a fix.
func (r *Reported) Report(pos Position) {
	r.mu.Lock()
	r.pos = pos
	if !r.has {
		r.has = true
		close(r.first)
	}
	r.mu.Unlock()
}

func (r *Reported) CurrentPosition(ctx context.Context) (Position, error) {
	r.mu.Lock()
	if r.has {
		pos := r.pos
		r.mu.Unlock()
		return pos, nil
	}
	r.mu.Unlock()
	select {
	case <-ctx.Done():
		return Position{}, ctx.Err()
	case <-r.first:
		r.mu.Lock()
		pos := r.pos
		r.mu.Unlock()
		return pos, nil
	}
}
