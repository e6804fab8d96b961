// Package store implements the in-process realtime tree the presence and
// ping channels run on: path-keyed writes with push-based subscriptions.
// Every mutation under a subscribed path delivers the full current snapshot
// of that subtree to the subscriber, in the order the store observed the
// writes. Removing an absent path is a no-op.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the value of a subtree at one point in time: child key to
// stored value. Consumers must treat it as immutable.
type Snapshot map[string]any

type node struct {
	children map[string]*node
	value    any
	hasValue bool
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

type Store struct {
	mu     sync.Mutex
	root   *node
	subs   map[int]*subscription
	nextID int
	closed bool
}

func New() *Store {
	return &Store{
		root: newNode(),
		subs: make(map[int]*subscription),
	}
}

// Write fully replaces the value at path, dropping any children beneath it.
func (s *Store) Write(path string, value any) {
	segs := split(path)
	s.mu.Lock()
	n := s.ensure(segs)
	n.value = value
	n.hasValue = true
	n.children = make(map[string]*node)
	s.notifyLocked(segs)
	s.mu.Unlock()
}

// Update merges fields into the value at path. If the existing value is not
// a map (or is absent), the fields become the value wholesale.
func (s *Store) Update(path string, fields map[string]any) {
	segs := split(path)
	s.mu.Lock()
	n := s.ensure(segs)
	existing, ok := n.value.(map[string]any)
	if !ok || !n.hasValue {
		existing = make(map[string]any, len(fields))
	} else {
		merged := make(map[string]any, len(existing)+len(fields))
		for k, v := range existing {
			merged[k] = v
		}
		existing = merged
	}
	for k, v := range fields {
		existing[k] = v
	}
	n.value = existing
	n.hasValue = true
	s.notifyLocked(segs)
	s.mu.Unlock()
}

// Push appends value under path with a store-generated, time-ordered child
// key, and returns that key.
func (s *Store) Push(path string, value any) string {
	key := pushKey()
	s.Write(path+"/"+key, value)
	return key
}

// Remove deletes the subtree at path. Removing an absent path does nothing
// and notifies nobody.
func (s *Store) Remove(path string) {
	segs := split(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(segs) == 0 {
		return
	}
	parent := s.lookup(segs[:len(segs)-1])
	if parent == nil {
		return
	}
	leaf := segs[len(segs)-1]
	if _, ok := parent.children[leaf]; !ok {
		return
	}
	delete(parent.children, leaf)
	s.notifyLocked(segs)
}

// Get returns the current snapshot of the subtree at path. An absent path
// yields an empty snapshot.
func (s *Store) Get(path string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(split(path))
}

// Subscribe registers fn for the subtree at path. fn receives the current
// snapshot immediately and again after every change under path, one at a
// time and in observation order. The returned func unsubscribes; it is safe
// to call more than once.
func (s *Store) Subscribe(path string, fn func(Snapshot)) (unsubscribe func()) {
	segs := split(path)
	sub := &subscription{
		path: segs,
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	sub.enqueue(s.snapshotLocked(segs))
	s.mu.Unlock()

	go sub.deliver()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			sub.stop()
		})
	}
}

// Close stops delivery to all subscribers.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[int]*subscription)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.stop()
	}
}

func (s *Store) ensure(segs []string) *node {
	n := s.root
	for _, seg := range segs {
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	return n
}

func (s *Store) lookup(segs []string) *node {
	n := s.root
	for _, seg := range segs {
		child, ok := n.children[seg]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

func (s *Store) snapshotLocked(segs []string) Snapshot {
	snap := make(Snapshot)
	n := s.lookup(segs)
	if n == nil {
		return snap
	}
	for key, child := range n.children {
		if child.hasValue {
			snap[key] = child.value
		}
	}
	return snap
}

// notifyLocked queues a fresh snapshot for every subscriber whose path is an
// ancestor of (or equal to) the changed path.
func (s *Store) notifyLocked(changed []string) {
	for _, sub := range s.subs {
		if !isPrefix(sub.path, changed) {
			continue
		}
		sub.enqueue(s.snapshotLocked(sub.path))
	}
}

func isPrefix(prefix, path []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}

func split(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// subscription delivers queued snapshots one at a time on its own goroutine,
// so a slow consumer never blocks the store and never sees snapshots out of
// order.
type subscription struct {
	path []string
	fn   func(Snapshot)

	mu      sync.Mutex
	queue   []Snapshot
	stopped bool
	wake    chan struct{}
	done    chan struct{}
}

func (sub *subscription) enqueue(snap Snapshot) {
	sub.mu.Lock()
	if sub.stopped {
		sub.mu.Unlock()
		return
	}
	sub.queue = append(sub.queue, snap)
	sub.mu.Unlock()
	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscription) deliver() {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}
		for {
			sub.mu.Lock()
			if sub.stopped || len(sub.queue) == 0 {
				sub.mu.Unlock()
				break
			}
			snap := sub.queue[0]
			sub.queue = sub.queue[1:]
			sub.mu.Unlock()
			sub.fn(snap)
		}
	}
}

func (sub *subscription) stop() {
	sub.mu.Lock()
	if sub.stopped {
		sub.mu.Unlock()
		return
	}
	sub.stopped = true
	sub.queue = nil
	sub.mu.Unlock()
	close(sub.done)
}

// pushKey builds a time-ordered unique child key, millisecond prefix first
// so lexicographic order follows creation order.
func pushKey() string {
	return fmt.Sprintf("%013d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
