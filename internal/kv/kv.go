// Package kv is the persistence adapter: named JSON blobs in a durable store,
// plus a feed of changes written by other sessions sharing that store.
package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/existflow/taskboard/internal/schedule"
	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("key not found")

// Change describes a write to a key by some session
type Change struct {
	Key      string
	Value    []byte
	Origin   string // Session that wrote the value
	Revision int64
}

// Subscription is a registered change listener
type Subscription interface {
	Close()
}

// Store is a key/value blob store shared by one or more sessions.
// Subscribers only hear about writes made by other sessions.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Subscribe(keys []string, fn func(Change)) (Subscription, error)
	Origin() string
	Close() error
}

// Drivers accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type options struct {
	sched        schedule.Scheduler
	pollInterval time.Duration
	origin       string
}

// Option configures a store
type Option func(*options)

// WithScheduler sets the scheduler driving change-feed polling
func WithScheduler(s schedule.Scheduler) Option {
	return func(o *options) { o.sched = s }
}

// WithPollInterval sets how often SQL stores look for foreign writes
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithOrigin fixes the session id instead of generating one
func WithOrigin(origin string) Option {
	return func(o *options) { o.origin = origin }
}

func buildOptions(opts []Option) options {
	o := options{
		sched:        schedule.NewReal(),
		pollInterval: time.Second,
		origin:       uuid.New().String(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pollInterval <= 0 {
		o.pollInterval = time.Second
	}
	return o
}

// Open opens a store by driver name
func Open(driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(dsn, opts...)
	case DriverPostgres:
		return OpenPostgres(dsn, opts...)
	case DriverMemory:
		return NewMemory(opts...), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func watches(keys []string, key string) bool {
	return len(keys) == 0 || slices.Contains(keys, key)
}
