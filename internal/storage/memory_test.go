package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/yieldgate/internal/session"
)

func TestMemoryGetSetRemove(t *testing.T) {
	store := NewMemory().Namespace("profile-1")

	_, ok, err := store.Get("authStatus")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("authStatus", "authenticated"))
	v, ok, err := store.Get("authStatus")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "authenticated", v)

	require.NoError(t, store.Remove("authStatus"))
	_, ok, _ = store.Get("authStatus")
	assert.False(t, ok)

	assert.NoError(t, store.Remove("missing"))
}

func TestMemoryNamespacesAreIsolated(t *testing.T) {
	mem := NewMemory()
	a := mem.Namespace("a")
	b := mem.Namespace("b")

	var seen []session.Change
	cancel := b.Subscribe(func(c session.Change) { seen = append(seen, c) })
	defer cancel()

	require.NoError(t, a.Set("authStatus", "authenticated"))

	_, ok, _ := b.Get("authStatus")
	assert.False(t, ok)
	assert.Empty(t, seen)
}

func TestMemorySubscribeReportsChanges(t *testing.T) {
	mem := NewMemory()
	writer := mem.Namespace("p")
	reader := mem.Namespace("p")

	var seen []session.Change
	cancel := reader.Subscribe(func(c session.Change) { seen = append(seen, c) })

	require.NoError(t, writer.Set("walletAddress", "addr-1"))
	require.NoError(t, writer.Set("walletAddress", "addr-1")) // unchanged, no event
	require.NoError(t, writer.Set("walletAddress", "addr-2"))
	require.NoError(t, writer.Remove("walletAddress"))
	require.NoError(t, writer.Remove("walletAddress")) // already gone, no event

	require.Len(t, seen, 3)
	assert.Equal(t, session.Change{Key: "walletAddress", NewValue: "addr-1"}, seen[0])
	assert.Equal(t, session.Change{Key: "walletAddress", OldValue: "addr-1", NewValue: "addr-2"}, seen[1])
	assert.Equal(t, session.Change{Key: "walletAddress", OldValue: "addr-2", Removed: true}, seen[2])

	cancel()
	cancel()
	require.NoError(t, writer.Set("walletAddress", "addr-3"))
	assert.Len(t, seen, 3)
}

func TestMemorySubscriberMayReadStore(t *testing.T) {
	store := NewMemory().Namespace("p")

	var got string
	cancel := store.Subscribe(func(c session.Change) {
		got, _, _ = store.Get(c.Key)
	})
	defer cancel()

	require.NoError(t, store.Set("authStatus", "authenticated"))
	assert.Equal(t, "authenticated", got)
}

func TestDiff(t *testing.T) {
	old := map[string]string{"a": "1", "b": "2", "c": "3"}
	next := map[string]string{"a": "1", "b": "20", "d": "4"}

	changes := diff(old, next)

	assert.Equal(t, []session.Change{
		{Key: "b", OldValue: "2", NewValue: "20"},
		{Key: "c", OldValue: "3", Removed: true},
		{Key: "d", NewValue: "4"},
	}, changes)
	assert.Empty(t, diff(next, next))
}
