package kv

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	value    []byte
	revision int64
	origin   string
}

// memoryBackend is the data every forked Memory session shares
type memoryBackend struct {
	mu       sync.Mutex
	data     map[string]memoryEntry
	revision int64
	subs     map[*memorySub]struct{}
}

// Memory is an in-process store. Fork returns another session on the same
// data, which is how tests and the demo stand in for a second tab.
type Memory struct {
	backend *memoryBackend
	origin  string
}

// NewMemory creates an empty in-memory store
func NewMemory(opts ...Option) *Memory {
	o := buildOptions(opts)
	return &Memory{
		backend: &memoryBackend{
			data: make(map[string]memoryEntry),
			subs: make(map[*memorySub]struct{}),
		},
		origin: o.origin,
	}
}

// Fork returns a new session sharing this store's data
func (m *Memory) Fork() *Memory {
	return &Memory{backend: m.backend, origin: uuid.New().String()}
}

// Origin returns the session id
func (m *Memory) Origin() string {
	return m.origin
}

// Get returns a copy of the stored value
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := m.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value and queues a change for every other session watching key
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := m.backend
	b.mu.Lock()
	b.revision++
	e := memoryEntry{value: append([]byte(nil), value...), revision: b.revision, origin: m.origin}
	b.data[key] = e

	var targets []*memorySub
	for sub := range b.subs {
		if sub.origin != m.origin && watches(sub.keys, key) {
			targets = append(targets, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range targets {
		sub.push(Change{Key: key, Value: append([]byte(nil), e.value...), Origin: m.origin, Revision: e.revision})
	}
	return nil
}

// Subscribe registers fn for foreign writes to keys (all keys when empty).
// Changes are delivered in order on a goroutine owned by the subscription.
func (m *Memory) Subscribe(keys []string, fn func(Change)) (Subscription, error) {
	if fn == nil {
		return nil, errors.New("nil change handler")
	}
	sub := &memorySub{
		backend: m.backend,
		origin:  m.origin,
		keys:    append([]string(nil), keys...),
		fn:      fn,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	m.backend.mu.Lock()
	m.backend.subs[sub] = struct{}{}
	m.backend.mu.Unlock()

	go sub.run()
	return sub, nil
}

// Close is a no-op; the backend lives as long as any session references it
func (m *Memory) Close() error {
	return nil
}

// memorySub is a mailbox: an unbounded queue drained by one goroutine, so a
// writer never blocks on a slow listener
type memorySub struct {
	backend *memoryBackend
	origin  string
	keys    []string
	fn      func(Change)

	mu     sync.Mutex
	queue  []Change
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

func (s *memorySub) push(c Change) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, c)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *memorySub) run() {
	for {
		select {
		case <-s.wake:
		case <-s.done:
			return
		}
		for {
			s.mu.Lock()
			if s.closed || len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			c := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			s.fn(c)
		}
	}
}

func (s *memorySub) Close() {
	s.backend.mu.Lock()
	delete(s.backend.subs, s)
	s.backend.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.queue = nil
		close(s.done)
	}
}
