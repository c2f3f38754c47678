package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/yieldgate/internal/session"
	"github.com/AlexZinkM/yieldgate/internal/storage"
)

func TestMarkAuthenticated(t *testing.T) {
	store := storage.NewMemory().Namespace("p")
	now := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, session.MarkAuthenticated(store, now))

	v, ok, err := store.Get(session.KeyAuthStatus)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "authenticated", v)

	rec := session.ReadRecord(store)
	assert.True(t, rec.Authenticated)
	assert.True(t, rec.AuthTimestamp.Equal(now))
	assert.Empty(t, rec.WalletAddress)
}

func TestTimestampWrittenBeforeFlag(t *testing.T) {
	store := storage.NewMemory().Namespace("p")

	var stampAtFlag string
	cancel := store.Subscribe(func(c session.Change) {
		if c.Key == session.KeyAuthStatus {
			stampAtFlag, _, _ = store.Get(session.KeyAuthTimestamp)
		}
	})
	defer cancel()

	require.NoError(t, session.MarkAuthenticated(store, time.UnixMilli(42)))
	assert.Equal(t, "42", stampAtFlag)
}

func TestIsAuthenticatedFailsClosed(t *testing.T) {
	for _, value := range []string{"", "1", "true", "Authenticated", " authenticated", `{"authenticated":true}`, "null"} {
		store := storage.NewMemory().Namespace("p")
		require.NoError(t, store.Set(session.KeyAuthStatus, value))
		assert.False(t, session.IsAuthenticated(store), "value %q", value)
	}
}

func TestReadRecordIgnoresBadTimestamp(t *testing.T) {
	store := storage.NewMemory().Namespace("p")
	require.NoError(t, store.Set(session.KeyAuthStatus, session.AuthenticatedValue))
	require.NoError(t, store.Set(session.KeyAuthTimestamp, "yesterday"))

	rec := session.ReadRecord(store)
	assert.True(t, rec.Authenticated)
	assert.True(t, rec.AuthTimestamp.IsZero())
}

func TestWalletAddressIndependentOfAuth(t *testing.T) {
	store := storage.NewMemory().Namespace("p")

	require.NoError(t, session.SetWalletAddress(store, "addr-1"))
	rec := session.ReadRecord(store)
	assert.False(t, rec.Authenticated)
	assert.Equal(t, "addr-1", rec.WalletAddress)

	require.NoError(t, session.ClearWalletAddress(store))
	assert.Empty(t, session.ReadRecord(store).WalletAddress)
}

func TestLoadUser(t *testing.T) {
	store := storage.NewMemory().Namespace("p")

	_, err := session.LoadUser(store)
	assert.ErrorIs(t, err, session.ErrNoUser)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, session.SaveUser(store, session.User{Email: "a@b.com", AccountType: "enterprise", Company: "Acme", CreatedAt: created}))

	u, err := session.LoadUser(store)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, "Acme", u.Company)
	assert.True(t, u.CreatedAt.Equal(created))

	for _, bad := range []string{"{not json", "42", "null", `["a"]`, ""} {
		require.NoError(t, store.Set(session.KeyUser, bad))
		_, err := session.LoadUser(store)
		assert.ErrorIs(t, err, session.ErrMalformedUser, "value %q", bad)
	}
}

func TestSignOutClearsRecord(t *testing.T) {
	store := storage.NewMemory().Namespace("p")
	require.NoError(t, session.MarkAuthenticated(store, time.Now()))
	require.NoError(t, session.SetWalletAddress(store, "addr"))
	require.NoError(t, session.SaveUser(store, session.User{Email: "a@b.com"}))

	require.NoError(t, session.SignOut(store))

	for _, key := range []string{session.KeyAuthStatus, session.KeyAuthTimestamp, session.KeyWalletAddress, session.KeyUser} {
		_, ok, _ := store.Get(key)
		assert.False(t, ok, key)
	}
	assert.NoError(t, session.SignOut(store))
}
