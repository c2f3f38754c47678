package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AlexZinkM/yieldgate/internal/common"
	"github.com/AlexZinkM/yieldgate/internal/session"
)

// State is the in-memory view of the connection.
// Account and ChainID are either both set or both empty.
type State struct {
	Account   string `json:"account,omitempty"`
	ChainID   string `json:"chainId,omitempty"`
	Connected bool   `json:"connected"`
}

// Option configures a Session.
type Option func(*Session)

// WithPollInterval sets how often SendTransaction checks for confirmation.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithReloadHook is called with the new chain id after the provider reports a
// chain change. The host is expected to reload everything network-specific.
func WithReloadHook(fn func(chainID string)) Option {
	return func(s *Session) { s.onReload = fn }
}

// WithNoticeHook is called with the classified notice whenever an operation fails.
func WithNoticeHook(fn func(Notice)) Option {
	return func(s *Session) { s.onNotice = fn }
}

// WithLogger sets the session's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session mediates between the host and a single provider.
type Session struct {
	provider     Provider
	store        session.Store
	pollInterval time.Duration
	onReload     func(chainID string)
	onNotice     func(Notice)
	logger       *slog.Logger

	mu      sync.Mutex
	account string
	chainID string

	listener *providerListener
}

// NewSession wraps provider, which may be nil when no wallet is installed.
// The connected account is persisted to store.
func NewSession(provider Provider, store session.Store, opts ...Option) *Session {
	s := &Session{
		provider:     provider,
		store:        store,
		pollInterval: time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if provider != nil {
		s.listener = &providerListener{s: s}
		for _, event := range []string{EventAccountsChanged, EventChainChanged, EventDisconnect} {
			provider.On(event, s.listener)
		}
	}
	return s
}

// Close detaches the session from the provider's notifications.
func (s *Session) Close() {
	if s.provider == nil || s.listener == nil {
		return
	}
	for _, event := range []string{EventAccountsChanged, EventChainChanged, EventDisconnect} {
		s.provider.RemoveListener(event, s.listener)
	}
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{Account: s.account, ChainID: s.chainID, Connected: s.account != ""}
}

// Connect requests account access and records the first account and the current chain.
func (s *Session) Connect(ctx context.Context) (State, error) {
	if s.provider == nil {
		return s.State(), s.fail("connect", ErrProviderAbsent)
	}

	var accounts []string
	if err := s.call(ctx, MethodRequestAccounts, nil, &accounts); err != nil {
		return s.State(), s.fail("connect", err)
	}
	if len(accounts) == 0 || strings.TrimSpace(accounts[0]) == "" {
		return s.State(), s.fail("connect", ErrNoAccounts)
	}

	var chainID string
	if err := s.call(ctx, MethodChainID, nil, &chainID); err != nil {
		return s.State(), s.fail("connect", err)
	}

	if err := session.SetWalletAddress(s.store, accounts[0]); err != nil {
		return s.State(), s.fail("connect", err)
	}

	s.mu.Lock()
	s.account = accounts[0]
	s.chainID = chainID
	st := s.stateLocked()
	s.mu.Unlock()

	s.logger.Info("wallet connected", "account", st.Account, "chain", st.ChainID)
	return st, nil
}

// Disconnect forgets the account locally. Provider-side permission is not revoked.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	wasConnected := s.account != ""
	s.account = ""
	s.chainID = ""
	s.mu.Unlock()

	if err := session.ClearWalletAddress(s.store); err != nil {
		return err
	}
	if wasConnected {
		s.logger.Info("wallet disconnected")
	}
	return nil
}

// SwitchNetwork asks the provider to change chains. When the provider does not
// know the chain it is asked to add it from the network table.
// On failure the recorded chain id is left unchanged.
func (s *Session) SwitchNetwork(ctx context.Context, chainID string) error {
	if s.provider == nil {
		return s.fail("switch network", ErrProviderAbsent)
	}

	err := s.call(ctx, MethodSwitchChain, SwitchChainParams{ChainID: chainID}, nil)
	if code, ok := ErrorCode(err); ok && code == CodeUnrecognizedChain {
		network, known := LookupNetwork(chainID)
		if !known {
			return s.fail("switch network", fmt.Errorf("%w: %s", ErrUnknownNetwork, chainID))
		}
		err = s.call(ctx, MethodAddChain, network, nil)
	}
	if err != nil {
		return s.fail("switch network", err)
	}

	s.mu.Lock()
	if s.account != "" {
		s.chainID = chainID
	}
	s.mu.Unlock()
	return nil
}

// Balance returns the native balance of address as a decimal string.
// An empty address means the connected account.
func (s *Session) Balance(ctx context.Context, address string) (string, error) {
	st := s.State()
	if s.provider == nil || !st.Connected {
		return "", s.fail("balance", ErrNoSession)
	}
	if address == "" {
		address = st.Account
	}

	var raw string
	if err := s.call(ctx, MethodGetBalance, GetBalanceParams{Address: address}, &raw); err != nil {
		return "", s.fail("balance", err)
	}
	units, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return "", s.fail("balance", fmt.Errorf("malformed balance %q: %w", raw, err))
	}
	return common.FormatUnits(units, decimalsFor(st.ChainID)), nil
}

// SendTransaction transfers amount (a decimal string in the native coin) to
// to and waits until the provider reports the transaction confirmed. Only
// ctx can stop the wait.
func (s *Session) SendTransaction(ctx context.Context, to, amount string) (string, error) {
	st := s.State()
	if s.provider == nil || !st.Connected {
		return "", s.fail("send transaction", ErrNoSigner)
	}

	units, err := common.ParseUnits(amount, decimalsFor(st.ChainID))
	if err != nil {
		return "", s.fail("send transaction", fmt.Errorf("invalid amount: %w", err))
	}

	var sig string
	params := SendTransactionParams{From: st.Account, To: to, Value: strconv.FormatUint(units, 10)}
	if err := s.call(ctx, MethodSendTransaction, params, &sig); err != nil {
		return "", s.fail("send transaction", err)
	}
	s.logger.Info("transaction submitted", "signature", sig)

	if err := s.awaitConfirmation(ctx, sig); err != nil {
		return sig, s.fail("send transaction", err)
	}
	return sig, nil
}

func (s *Session) awaitConfirmation(ctx context.Context, sig string) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		var status SignatureStatus
		if err := s.call(ctx, MethodGetSignatureStatus, SignatureStatusParams{Signature: sig}, &status); err != nil {
			return err
		}
		if status.Err != "" {
			return fmt.Errorf("%w: %s", ErrTransactionFailed, status.Err)
		}
		if status.Confirmed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Session) call(ctx context.Context, method string, params any, out any) error {
	raw, err := s.provider.Request(ctx, RequestArgs{Method: method, Params: params})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

func (s *Session) fail(op string, err error) error {
	notice := NoticeFor(err)
	if !IsCancelled(err) {
		s.logger.Warn("wallet operation failed", "op", op, "notice", notice.Kind, "error", err)
	}
	if s.onNotice != nil {
		s.onNotice(notice)
	}
	return err
}

func (s *Session) handleAccountsChanged(payload json.RawMessage) {
	var accounts []string
	if err := json.Unmarshal(payload, &accounts); err != nil {
		s.logger.Warn("ignoring malformed accountsChanged payload", "error", err)
		return
	}
	if len(accounts) == 0 {
		if err := s.Disconnect(); err != nil {
			s.logger.Warn("failed to clear wallet address", "error", err)
		}
		return
	}

	s.mu.Lock()
	if s.account == "" {
		// Not connected: a change elsewhere does not grant access here.
		s.mu.Unlock()
		return
	}
	s.account = accounts[0]
	s.mu.Unlock()

	if err := session.SetWalletAddress(s.store, accounts[0]); err != nil {
		s.logger.Warn("failed to persist wallet address", "error", err)
	}
}

func (s *Session) handleChainChanged(payload json.RawMessage) {
	var chainID string
	if err := json.Unmarshal(payload, &chainID); err != nil {
		s.logger.Warn("ignoring malformed chainChanged payload", "error", err)
		return
	}

	s.mu.Lock()
	if s.account != "" {
		s.chainID = chainID
	}
	s.mu.Unlock()

	if s.onReload != nil {
		s.onReload(chainID)
	}
}

type providerListener struct {
	s *Session
}

func (l *providerListener) OnEvent(event string, payload json.RawMessage) {
	switch event {
	case EventAccountsChanged:
		l.s.handleAccountsChanged(payload)
	case EventChainChanged:
		l.s.handleChainChanged(payload)
	case EventDisconnect:
		if err := l.s.Disconnect(); err != nil {
			l.s.logger.Warn("failed to clear wallet address", "error", err)
		}
	}
}

// IsNoSession reports whether err means the session was not connected.
func IsNoSession(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrNoSigner)
}
