package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestInitDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "KEYSTORE_PATH", "SOLANA_CHAIN", "STORE_PATH",
		"SIGNIN_REDIRECT_DELAY", "CONFIRM_POLL_INTERVAL", "GATE_ENFORCE_WALLET", "SEND_COOLDOWN")

	require.NoError(t, Init())

	assert.Equal(t, "8080", GetPort())
	assert.Equal(t, "data/yieldgate.db", GetStorePath())
	assert.Equal(t, "mainnet-beta", GetSolanaChain())
	assert.Empty(t, GetKeystorePath())
	assert.Equal(t, 2*time.Second, GetRedirectDelay())
	assert.Equal(t, time.Second, GetConfirmPoll())
	assert.False(t, Get().EnforceWallet)
	assert.Zero(t, GetSendCooldown())
}

func TestInitOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KEYSTORE_PATH", "/tmp/wallet.cwt")
	t.Setenv("SIGNIN_REDIRECT_DELAY", "500ms")
	t.Setenv("GATE_ENFORCE_WALLET", "true")
	t.Setenv("SEND_COOLDOWN", "1m")

	require.NoError(t, Init())

	assert.Equal(t, "9090", GetPort())
	assert.Equal(t, "/tmp/wallet.cwt", GetKeystorePath())
	assert.Equal(t, 500*time.Millisecond, GetRedirectDelay())
	assert.True(t, Get().EnforceWallet)
	assert.Equal(t, time.Minute, GetSendCooldown())
}

func TestInitRejectsBadPollInterval(t *testing.T) {
	t.Setenv("CONFIRM_POLL_INTERVAL", "0s")

	assert.Error(t, Init())
}

func TestGetKeystorePasswordBytesUnset(t *testing.T) {
	passwordBytes = nil

	_, err := GetKeystorePasswordBytes()
	assert.Error(t, err)
}

func TestGetKeystorePasswordBytesCopies(t *testing.T) {
	passwordBytes = []byte("secret")
	t.Cleanup(func() { passwordBytes = nil })

	got, err := GetKeystorePasswordBytes()
	require.NoError(t, err)
	clear(got)

	assert.Equal(t, []byte("secret"), passwordBytes)
}
