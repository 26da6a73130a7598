package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/schedule"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore keeps blobs in a SQL table. Other processes opening the same
// database are other sessions; their writes reach subscribers by polling.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	opts    options

	mu     sync.Mutex
	subs   map[*sqlSub]struct{}
	poller schedule.Handle

	pollMu sync.Mutex
	// last revision observed per key; revisions may commit out of order
	// across keys, so there is no single high-water mark
	seen map[string]int64
}

type sqlSub struct {
	store *SQLStore
	keys  []string
	fn    func(Change)
}

// OpenSQLite opens or creates the SQLite database at path
func OpenSQLite(path string, opts ...Option) (*SQLStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// several processes share the file: wait on locks instead of failing
	dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	return openSQL(sqliteDialect, dsn, opts)
}

// OpenPostgres connects to a Postgres database by URL
func OpenPostgres(url string, opts ...Option) (*SQLStore, error) {
	return openSQL(postgresDialect, url, opts)
}

func openSQL(d dialect, dsn string, opts []Option) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLStore{
		db:      db,
		dialect: d,
		opts:    buildOptions(opts),
		subs:    make(map[*sqlSub]struct{}),
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("Store opened", logger.F("driver", d.name), logger.F("origin", s.opts.origin))
	return s, nil
}

// Origin returns the session id stamped on this store's writes
func (s *SQLStore) Origin() string {
	return s.opts.origin
}

// Get returns the stored value for key
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set upserts value under key with a fresh revision
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	var rev int64
	err := s.db.QueryRowContext(ctx, s.dialect.upsert,
		key, string(value), s.opts.origin, s.opts.sched.Now().UTC().Format(time.RFC3339Nano),
	).Scan(&rev)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Subscribe registers fn for writes by other sessions to keys (all when empty).
// The first subscription starts the poll loop; fn runs on the poller.
func (s *SQLStore) Subscribe(keys []string, fn func(Change)) (Subscription, error) {
	if fn == nil {
		return nil, errors.New("nil change handler")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poller == nil {
		entries, err := s.readEntries()
		if err != nil {
			return nil, fmt.Errorf("failed to read revisions: %w", err)
		}
		seen := make(map[string]int64, len(entries))
		for _, e := range entries {
			seen[e.Key] = e.Revision
		}
		s.pollMu.Lock()
		s.seen = seen
		s.pollMu.Unlock()
		s.poller = s.opts.sched.Every(s.opts.pollInterval, s.poll)
	}

	sub := &sqlSub{store: s, keys: append([]string(nil), keys...), fn: fn}
	s.subs[sub] = struct{}{}
	return sub, nil
}

// poll delivers every entry whose revision moved since the last poll and
// that another session wrote. The poll loop calls it on every tick.
func (s *SQLStore) poll() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		logger.Warn("Change feed poll failed", logger.F("error", err))
		return
	}

	var changes []Change
	for _, e := range entries {
		if rev, ok := s.seen[e.Key]; ok && rev == e.Revision {
			continue
		}
		s.seen[e.Key] = e.Revision
		if e.Origin != s.opts.origin {
			changes = append(changes, e)
		}
	}

	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	subs := make([]*sqlSub, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, c := range changes {
		logger.Debug("Foreign write observed", logger.F("key", c.Key), logger.F("revision", c.Revision))
		for _, sub := range subs {
			if watches(sub.keys, c.Key) {
				sub.fn(c)
			}
		}
	}
}

// readEntries reads every row; a failed read returns no partial result
func (s *SQLStore) readEntries() ([]Change, error) {
	rows, err := s.db.Query(s.dialect.entries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Change
	for rows.Next() {
		var c Change
		var value string
		if err := rows.Scan(&c.Key, &value, &c.Revision, &c.Origin); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		c.Value = []byte(value)
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (sub *sqlSub) Close() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, sub)
	if len(s.subs) == 0 && s.poller != nil {
		s.poller.Stop()
		s.poller = nil
	}
}

// Close stops polling and closes the database
func (s *SQLStore) Close() error {
	s.mu.Lock()
	if s.poller != nil {
		s.poller.Stop()
		s.poller = nil
	}
	s.subs = make(map[*sqlSub]struct{})
	s.mu.Unlock()

	return s.db.Close()
}
