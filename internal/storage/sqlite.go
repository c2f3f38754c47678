package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	_ "modernc.org/sqlite"

	"github.com/AlexZinkM/yieldgate/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    namespace   TEXT NOT NULL,
    key         TEXT NOT NULL,
    value       TEXT NOT NULL,
    updated_at  INTEGER NOT NULL,
    PRIMARY KEY (namespace, key)
);
`

// SQLite persists namespaces in a single database file.
//
// Subscribers are notified of writes made by this process directly and of
// writes made by other processes through fsnotify events on the database
// file. Both paths diff against the last snapshot of the namespace, so each
// change is reported once.
type SQLite struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	mu        sync.Mutex
	subs      map[string]map[int]func(session.Change)
	snapshots map[string]map[string]string
	nextID    int

	refreshMu sync.Mutex

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
}

// OpenSQLite opens or creates the database at path and starts watching it.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// Rollback journal so that every commit writes the main file, which is what the watcher observes.
	dsn := absPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(DELETE)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		_ = fsWatcher.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to watch store directory: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	s := &SQLite{
		db:        db,
		path:      absPath,
		logger:    logger,
		subs:      make(map[string]map[int]func(session.Change)),
		snapshots: make(map[string]map[string]string),
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}

	s.wg.Add(1)
	go s.eventLoop()

	return s, nil
}

// Close stops the watcher and closes the database.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	close(s.done)
	s.wg.Wait()
	werr := s.fsWatcher.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	return werr
}

// Ping reports whether the database is reachable.
func (s *SQLite) Ping() error {
	return s.db.Ping()
}

// Namespace returns the store for one origin/profile.
func (s *SQLite) Namespace(id string) session.Store {
	return &sqliteNamespace{s: s, ns: id}
}

type sqliteNamespace struct {
	s  *SQLite
	ns string
}

func (n *sqliteNamespace) Get(key string) (string, bool, error) {
	var value string
	err := n.s.db.QueryRow(`SELECT value FROM kv WHERE namespace = ? AND key = ?`, n.ns, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (n *sqliteNamespace) Set(key, value string) error {
	_, err := n.s.db.Exec(`
		INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		n.ns, key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	n.s.refresh(n.ns)
	return nil
}

func (n *sqliteNamespace) Remove(key string) error {
	if _, err := n.s.db.Exec(`DELETE FROM kv WHERE namespace = ? AND key = ?`, n.ns, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	n.s.refresh(n.ns)
	return nil
}

func (n *sqliteNamespace) Subscribe(fn func(session.Change)) func() {
	s := n.s

	// Take the snapshot before registering so the first refresh has a baseline.
	s.refreshMu.Lock()
	s.mu.Lock()
	_, haveSnapshot := s.snapshots[n.ns]
	s.mu.Unlock()
	if !haveSnapshot {
		values, err := s.load(n.ns)
		if err != nil {
			s.logger.Warn("failed to snapshot namespace", "namespace", n.ns, "error", err)
			values = map[string]string{}
		}
		s.mu.Lock()
		s.snapshots[n.ns] = values
		s.mu.Unlock()
	}
	s.refreshMu.Unlock()

	s.mu.Lock()
	if s.subs[n.ns] == nil {
		s.subs[n.ns] = make(map[int]func(session.Change))
	}
	id := s.nextID
	s.nextID++
	s.subs[n.ns][id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[n.ns], id)
			if len(s.subs[n.ns]) == 0 {
				delete(s.subs, n.ns)
				delete(s.snapshots, n.ns)
			}
		})
	}
}

func (s *SQLite) load(ns string) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM kv WHERE namespace = ?`, ns)
	if err != nil {
		return nil, fmt.Errorf("failed to query namespace: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

// refresh reloads a subscribed namespace and notifies about what changed.
func (s *SQLite) refresh(ns string) {
	s.refreshMu.Lock()
	s.mu.Lock()
	old, subscribed := s.snapshots[ns]
	s.mu.Unlock()
	if !subscribed {
		s.refreshMu.Unlock()
		return
	}

	next, err := s.load(ns)
	if err != nil {
		s.refreshMu.Unlock()
		s.logger.Warn("failed to refresh namespace", "namespace", ns, "error", err)
		return
	}
	changes := diff(old, next)

	s.mu.Lock()
	if _, still := s.snapshots[ns]; still {
		s.snapshots[ns] = next
	}
	fns := subscribersOf(s.subs[ns])
	s.mu.Unlock()
	s.refreshMu.Unlock()

	notify(fns, changes...)
}

func (s *SQLite) refreshAll() {
	s.mu.Lock()
	namespaces := make([]string, 0, len(s.snapshots))
	for ns := range s.snapshots {
		namespaces = append(namespaces, ns)
	}
	s.mu.Unlock()

	for _, ns := range namespaces {
		s.refresh(ns)
	}
}

// eventLoop turns writes to the database file by any process into refreshes.
func (s *SQLite) eventLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != s.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.refreshAll()

		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("store watcher error", "error", err)
		}
	}
}
