package storage

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/yieldgate/internal/logging"
	"github.com/AlexZinkM/yieldgate/internal/session"
)

func openTestSQLite(t *testing.T, path string) *SQLite {
	t.Helper()
	s, err := OpenSQLite(path, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ", logging.Discard())
	assert.Error(t, err)
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "store.db")
	s := openTestSQLite(t, path)
	assert.NoError(t, s.Ping())
}

func TestSQLiteGetSetRemove(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "store.db"))
	store := s.Namespace("profile-1")

	_, ok, err := store.Get("authStatus")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("authStatus", "pending"))
	require.NoError(t, store.Set("authStatus", "authenticated"))

	v, ok, err := store.Get("authStatus")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "authenticated", v)

	_, ok, _ = s.Namespace("profile-2").Get("authStatus")
	assert.False(t, ok)

	require.NoError(t, store.Remove("authStatus"))
	_, ok, _ = store.Get("authStatus")
	assert.False(t, ok)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	first, err := OpenSQLite(path, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, first.Namespace("p").Set("walletAddress", "addr-1"))
	require.NoError(t, first.Close())

	second := openTestSQLite(t, path)
	v, ok, err := second.Namespace("p").Get("walletAddress")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "addr-1", v)
}

type changeLog struct {
	mu      sync.Mutex
	changes []session.Change
}

func (l *changeLog) add(c session.Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) snapshot() []session.Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]session.Change(nil), l.changes...)
}

func TestSQLiteSubscribeSameProcessReportsOnce(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "store.db"))
	store := s.Namespace("p")

	var log changeLog
	cancel := store.Subscribe(log.add)
	defer cancel()

	require.NoError(t, store.Set("authStatus", "authenticated"))

	require.Eventually(t, func() bool { return len(log.snapshot()) >= 1 }, 2*time.Second, 10*time.Millisecond)
	// Give the file watcher a chance to deliver a duplicate if the diffing were broken.
	time.Sleep(200 * time.Millisecond)

	changes := log.snapshot()
	require.Len(t, changes, 1)
	assert.Equal(t, session.Change{Key: "authStatus", NewValue: "authenticated"}, changes[0])
}

func TestSQLiteSubscribeSeesOtherProcessWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	tabA := openTestSQLite(t, path)
	tabB := openTestSQLite(t, path)

	var log changeLog
	cancel := tabB.Namespace("p").Subscribe(log.add)
	defer cancel()

	require.NoError(t, tabA.Namespace("p").Set("authStatus", "authenticated"))

	require.Eventually(t, func() bool {
		for _, c := range log.snapshot() {
			if c.Key == "authStatus" && c.NewValue == "authenticated" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSQLiteCancelStopsNotifications(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "store.db"))
	store := s.Namespace("p")

	var log changeLog
	cancel := store.Subscribe(log.add)
	cancel()

	require.NoError(t, store.Set("authStatus", "authenticated"))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, log.snapshot())
}
