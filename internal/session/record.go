package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Storage keys of the session record.
const (
	KeyAuthStatus    = "authStatus"
	KeyAuthTimestamp = "authTimestamp"
	KeyWalletAddress = "walletAddress"
	KeyUser          = "user"
)

// AuthenticatedValue is the only KeyAuthStatus value that grants access.
const AuthenticatedValue = "authenticated"

var (
	// ErrNoUser is returned when no user record has been stored.
	ErrNoUser = errors.New("user record not found")
	// ErrMalformedUser is returned when the stored user record is not a JSON object.
	ErrMalformedUser = errors.New("user record is malformed")
)

// Record is a decoded view of the persisted session record.
type Record struct {
	Authenticated bool
	AuthTimestamp time.Time // zero when absent or unparsable; advisory only
	WalletAddress string
}

// User is the profile blob saved when a flow completes.
type User struct {
	Email       string    `json:"email"`
	AccountType string    `json:"accountType,omitempty"`
	Company     string    `json:"company,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MarkAuthenticated sets the auth flag and a fresh timestamp.
// The timestamp is written first so a subscriber reacting to the flag sees both.
func MarkAuthenticated(s Store, now time.Time) error {
	if err := s.Set(KeyAuthTimestamp, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("failed to write auth timestamp: %w", err)
	}
	if err := s.Set(KeyAuthStatus, AuthenticatedValue); err != nil {
		return fmt.Errorf("failed to write auth flag: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether the stored flag is exactly AuthenticatedValue.
// Absence, any other value and read errors all count as false.
func IsAuthenticated(s Store) bool {
	v, ok, err := s.Get(KeyAuthStatus)
	if err != nil || !ok {
		return false
	}
	return v == AuthenticatedValue
}

// ReadRecord decodes the session record, failing closed on anything unexpected.
func ReadRecord(s Store) Record {
	rec := Record{Authenticated: IsAuthenticated(s)}
	if v, ok, err := s.Get(KeyAuthTimestamp); err == nil && ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.AuthTimestamp = time.UnixMilli(ms)
		}
	}
	if v, ok, err := s.Get(KeyWalletAddress); err == nil && ok {
		rec.WalletAddress = v
	}
	return rec
}

// SetWalletAddress persists the connected wallet address.
func SetWalletAddress(s Store, address string) error {
	if err := s.Set(KeyWalletAddress, address); err != nil {
		return fmt.Errorf("failed to write wallet address: %w", err)
	}
	return nil
}

// ClearWalletAddress removes the persisted wallet address.
func ClearWalletAddress(s Store) error {
	if err := s.Remove(KeyWalletAddress); err != nil {
		return fmt.Errorf("failed to remove wallet address: %w", err)
	}
	return nil
}

// SaveUser stores the user blob as JSON.
func SaveUser(s Store, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.Set(KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to write user: %w", err)
	}
	return nil
}

// LoadUser reads the user blob. It returns ErrNoUser when absent and
// ErrMalformedUser when the value is not a JSON object.
func LoadUser(s Store) (User, error) {
	v, ok, err := s.Get(KeyUser)
	if err != nil {
		return User{}, fmt.Errorf("failed to read user: %w", err)
	}
	if !ok {
		return User{}, ErrNoUser
	}
	raw := bytes.TrimSpace([]byte(v))
	if len(raw) == 0 || raw[0] != '{' {
		return User{}, ErrMalformedUser
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrMalformedUser, err)
	}
	return u, nil
}

// SignOut deletes every key of the session record.
func SignOut(s Store) error {
	for _, key := range []string{KeyAuthStatus, KeyAuthTimestamp, KeyWalletAddress, KeyUser} {
		if err := s.Remove(key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}
