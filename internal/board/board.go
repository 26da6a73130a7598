// Package board holds the task board state and the commands that change it.
//
// A Board is the single owner of the tasks, columns, users and activities of a
// session. Every command validates, mutates, appends to the activity log and
// persists the collections it touched before the board lock is released, so no
// reader ever observes a half-applied change.
package board

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/existflow/taskboard/internal/kv"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/schedule"
)

// Storage keys
const (
	KeyTasks      = "tasks"
	KeyColumns    = "columns"
	KeyUsers      = "users"
	KeyActivities = "activities"
	KeyTheme      = "theme"
)

// RecentLimit is the number of activities shown in the activity panel
const RecentLimit = 5

// ErrNotFound is returned when a referenced task or column does not exist
var ErrNotFound = errors.New("not found")

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Theme is the persisted colour scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q (use light or dark)", s)
}

// EventKind names the collection an event refers to
type EventKind string

const (
	EventTasks      EventKind = "tasks"
	EventColumns    EventKind = "columns"
	EventUsers      EventKind = "users"
	EventActivities EventKind = "activities"
	EventTheme      EventKind = "theme"
)

// Event is delivered to subscribers after a mutation completes.
// Remote is set when the change was written by another session.
type Event struct {
	Kind   EventKind `json:"kind"`
	TaskID string    `json:"taskId,omitempty"`
	Remote bool      `json:"remote,omitempty"`
}

// Board is the domain store for one session
type Board struct {
	mu         sync.Mutex
	store      *kv.Adapter
	sched      schedule.Scheduler
	rand       *rand.Rand
	userID     string
	tasks      []model.Task
	columns    []model.Column
	users      []model.User
	activities []model.Activity
	theme      Theme

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// Option configures a Board
type Option func(*Board)

// WithScheduler sets the clock used for timestamps
func WithScheduler(s schedule.Scheduler) Option {
	return func(b *Board) { b.sched = s }
}

// WithUser sets the id of the user acting in this session
func WithUser(id string) Option {
	return func(b *Board) { b.userID = id }
}

// WithRand sets the random source used for column colours
func WithRand(r *rand.Rand) Option {
	return func(b *Board) { b.rand = r }
}

func newBoard(store *kv.Adapter, opts []Option) *Board {
	b := &Board{
		store:  store,
		sched:  schedule.NewReal(),
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		userID: "user-1",
		theme:  ThemeLight,
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open loads a board from the store, seeding it on first use. Missing or corrupt
// collections fall back to their defaults; a failing store is an error.
func Open(ctx context.Context, store *kv.Adapter, opts ...Option) (*Board, error) {
	b := newBoard(store, opts)
	if err := b.load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// NewMinimal returns a board with the default users and columns and nothing
// else, backed by a private in-memory store. Startup uses it when the
// configured store cannot be opened.
func NewMinimal(opts ...Option) *Board {
	b := newBoard(kv.NewAdapter(kv.NewMemory()), opts)
	b.users = model.DefaultUsers()
	b.columns = model.DefaultColumns()
	b.tasks = []model.Task{}
	b.activities = []model.Activity{}
	return b
}

func (b *Board) load(ctx context.Context) error {
	var tasks []model.Task
	var columns []model.Column
	var users []model.User
	var activities []model.Activity

	hasTasks, err := b.store.LoadJSON(ctx, KeyTasks, &tasks)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	hasColumns, err := b.store.LoadJSON(ctx, KeyColumns, &columns)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	hasUsers, err := b.store.LoadJSON(ctx, KeyUsers, &users)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	hasActivities, err := b.store.LoadJSON(ctx, KeyActivities, &activities)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	theme, hasTheme, err := b.store.LoadString(ctx, KeyTheme)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !hasTasks && !hasColumns && !hasUsers && !hasActivities {
		logger.Info("Seeding new board")
		b.seed()
		b.persist(ctx, KeyTasks, KeyColumns, KeyUsers, KeyActivities)
		return nil
	}

	if !hasUsers {
		users = model.DefaultUsers()
	}
	if !hasColumns {
		columns = model.DefaultColumns()
	}
	if !hasTasks {
		tasks = []model.Task{}
	}
	if !hasActivities {
		activities = []model.Activity{}
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	model.SortColumns(columns)

	b.tasks = tasks
	b.columns = columns
	b.users = users
	b.activities = activities
	if hasTheme {
		if t, err := ParseTheme(theme); err == nil {
			b.theme = t
		}
	}

	logger.Debug("Board loaded",
		logger.F("tasks", len(tasks)),
		logger.F("columns", len(columns)),
		logger.F("activities", len(activities)))
	return nil
}

// Subscribe registers fn for events after every completed mutation. fn runs
// without the board lock held and may read the board.
func (b *Board) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.subMu.Lock()
			delete(b.subs, id)
			b.subMu.Unlock()
		})
	}
}

func (b *Board) emit(events ...Event) {
	b.subMu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()

	for _, e := range events {
		for _, fn := range fns {
			fn(e)
		}
	}
}

// persist writes the named collections. Failures are logged by the adapter and
// leave memory authoritative. Callers hold b.mu.
func (b *Board) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var err error
		switch key {
		case KeyTasks:
			err = b.store.SaveJSON(ctx, key, b.tasks)
		case KeyColumns:
			err = b.store.SaveJSON(ctx, key, b.columns)
		case KeyUsers:
			err = b.store.SaveJSON(ctx, key, b.users)
		case KeyActivities:
			err = b.store.SaveJSON(ctx, key, b.activities)
		case KeyTheme:
			err = b.store.SaveString(ctx, key, string(b.theme))
		}
		if err != nil {
			logger.Warn("Keeping in-memory state after failed save", logger.F("key", key))
		}
	}
}

// Store returns the adapter the board persists through
func (b *Board) Store() *kv.Adapter {
	return b.store
}

// UserID returns the id of the session user
func (b *Board) UserID() string {
	return b.userID
}

// Now returns the board clock's current time
func (b *Board) Now() time.Time {
	return b.sched.Now()
}

// Today returns the current date in the board clock's location
func (b *Board) Today() model.Date {
	return model.DateOf(b.sched.Now())
}
