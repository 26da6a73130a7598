// Package realtime keeps a board in step with other sessions sharing its store
// and simulates activity from the other board members.
package realtime

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/kv"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/schedule"
)

// DefaultInterval is the period of simulated peer activity
const DefaultInterval = 45 * time.Second

// Level of a notice
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a transient message for the user
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Bridge applies changes written by other sessions to a board and runs the
// peer activity simulator. Both are started and stopped together.
type Bridge struct {
	board    *board.Board
	store    kv.Store
	sched    schedule.Scheduler
	interval time.Duration
	rand     *rand.Rand
	notify   func(Notice)
	peers    bool // run the simulator

	mu       sync.Mutex
	running  bool
	sub      kv.Subscription
	ticker   schedule.Handle
	inflight sync.WaitGroup // callbacks entered while running
}

// Option configures a Bridge
type Option func(*Bridge)

// WithScheduler sets the scheduler driving the simulator
func WithScheduler(s schedule.Scheduler) Option {
	return func(br *Bridge) { br.sched = s }
}

// WithInterval sets the simulator period
func WithInterval(d time.Duration) Option {
	return func(br *Bridge) {
		if d > 0 {
			br.interval = d
		}
	}
}

// WithoutSimulation keeps the change feed but never simulates peer activity
func WithoutSimulation() Option {
	return func(br *Bridge) { br.peers = false }
}

// WithRand sets the random source for simulated activity
func WithRand(r *rand.Rand) Option {
	return func(br *Bridge) { br.rand = r }
}

// WithNotify sets the receiver of notices
func WithNotify(fn func(Notice)) Option {
	return func(br *Bridge) { br.notify = fn }
}

// New creates a bridge for b, watching the store b persists to
func New(b *board.Board, opts ...Option) *Bridge {
	br := &Bridge{
		board:    b,
		store:    b.Store().Store(),
		sched:    schedule.NewReal(),
		interval: DefaultInterval,
		rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		notify:   func(Notice) {},
		peers:    true,
	}
	for _, opt := range opts {
		opt(br)
	}
	return br
}

// Start subscribes to foreign writes and starts the simulator. Starting a
// running bridge does nothing.
func (br *Bridge) Start() error {
	br.mu.Lock()
	defer br.mu.Unlock()

	if br.running {
		return nil
	}

	sub, err := br.store.Subscribe([]string{board.KeyTasks, board.KeyActivities}, br.handleChange)
	if err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}
	br.sub = sub
	if br.peers {
		br.ticker = br.sched.Every(br.interval, br.simulate)
	}
	br.running = true

	logger.Debug("Realtime bridge started", logger.F("origin", br.store.Origin()), logger.F("interval", br.interval.String()))
	return nil
}

// Stop releases the subscription and the simulator timer, then waits for a
// change or simulated activity already being applied. Nothing touches the
// board once it returns. It is safe to call more than once.
func (br *Bridge) Stop() {
	br.mu.Lock()
	if !br.running {
		br.mu.Unlock()
		return
	}
	br.running = false
	br.sub.Close()
	if br.ticker != nil {
		br.ticker.Stop()
	}
	br.sub, br.ticker = nil, nil
	br.mu.Unlock()

	br.inflight.Wait()
	logger.Debug("Realtime bridge stopped")
}

// Running reports whether the bridge is started
func (br *Bridge) Running() bool {
	br.mu.Lock()
	defer br.mu.Unlock()
	return br.running
}

// enter admits a callback while the bridge runs; the caller must call
// inflight.Done when it returns true
func (br *Bridge) enter() bool {
	br.mu.Lock()
	defer br.mu.Unlock()
	if !br.running {
		return false
	}
	br.inflight.Add(1)
	return true
}

func (br *Bridge) handleChange(c kv.Change) {
	if !br.enter() {
		return
	}
	defer br.inflight.Done()

	switch c.Key {
	case board.KeyTasks:
		var tasks []model.Task
		if err := json.Unmarshal(c.Value, &tasks); err != nil {
			br.syncError(c, err)
			return
		}
		br.board.ReplaceTasks(tasks)
		br.emit(LevelInfo, "Tasks updated from another session")

	case board.KeyActivities:
		var activities []model.Activity
		if err := json.Unmarshal(c.Value, &activities); err != nil {
			br.syncError(c, err)
			return
		}
		br.board.ReplaceActivities(activities)
		br.emit(LevelInfo, "Activity updated from another session")
	}

	logger.Debug("Applied foreign change", logger.F("key", c.Key), logger.F("origin", c.Origin))
}

func (br *Bridge) syncError(c kv.Change, err error) {
	logger.Warn("Ignoring malformed change from another session",
		logger.F("key", c.Key),
		logger.F("origin", c.Origin),
		logger.F("error", err))
	br.emit(LevelError, fmt.Sprintf("Sync error: could not read %s from another session", c.Key))
}

func (br *Bridge) emit(level Level, msg string) {
	br.notify(Notice{Level: level, Message: msg, Time: br.sched.Now()})
}
