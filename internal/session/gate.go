package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/AlexZinkM/yieldgate/internal/routepath"
)

// AccessState is the view a gated page renders.
type AccessState int

const (
	Loading AccessState = iota
	Unauthenticated
	NoWallet
	Authenticated
)

func (s AccessState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case NoWallet:
		return "no_wallet"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Variant selects how much of the record the gate inspects.
type Variant int

const (
	// Simple only checks the auth flag.
	Simple Variant = iota
	// WalletAware also requires a stored user record.
	WalletAware
)

// ParseVariant maps "simple" and "wallet" to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "", "simple":
		return Simple, true
	case "wallet":
		return WalletAware, true
	default:
		return Simple, false
	}
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithEnforceWallet makes the wallet-aware variant resolve to NoWallet when
// no wallet address is stored. Off by default.
func WithEnforceWallet(enforce bool) GateOption {
	return func(g *Gate) { g.enforceWallet = enforce }
}

// WithRedirectDelay sets the pause before RedirectToSignIn navigates.
func WithRedirectDelay(d time.Duration) GateOption {
	return func(g *Gate) { g.redirectDelay = d }
}

// WithGateLogger sets the logger used for fail-closed diagnostics.
func WithGateLogger(l *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// Gate decides which protected view to show from the session record.
type Gate struct {
	store         Store
	variant       Variant
	enforceWallet bool
	redirectDelay time.Duration
	logger        *slog.Logger

	mu    sync.Mutex
	state AccessState
}

// NewGate returns a gate in the Loading state.
func NewGate(store Store, variant Variant, opts ...GateOption) *Gate {
	g := &Gate{
		store:         store,
		variant:       variant,
		redirectDelay: 2 * time.Second,
		logger:        slog.Default(),
		state:         Loading,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the last resolved state.
func (g *Gate) State() AccessState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Resolve reads the record and stores the resulting state.
func (g *Gate) Resolve() AccessState {
	state := g.resolve()
	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
	return state
}

func (g *Gate) resolve() AccessState {
	if !IsAuthenticated(g.store) {
		return Unauthenticated
	}
	if g.variant == Simple {
		return Authenticated
	}

	if _, err := LoadUser(g.store); err != nil {
		if !errors.Is(err, ErrNoUser) {
			g.logger.Warn("unreadable user record, treating session as unauthenticated", "error", err)
		}
		return Unauthenticated
	}
	if g.enforceWallet && ReadRecord(g.store).WalletAddress == "" {
		return NoWallet
	}
	return Authenticated
}

// Watch subscribes to the store, then resolves and reports the state to fn,
// then re-resolves on every relevant store change and reports again whenever
// the state differs. Reports are serialized; fn must not write gate keys.
func (g *Gate) Watch(fn func(AccessState)) (cancel func()) {
	var (
		notifyMu sync.Mutex
		reported bool
		last     AccessState
	)
	report := func() {
		notifyMu.Lock()
		defer notifyMu.Unlock()
		state := g.Resolve()
		if reported && state == last {
			return
		}
		reported = true
		last = state
		fn(state)
	}

	cancel = g.store.Subscribe(func(c Change) {
		if g.relevant(c.Key) {
			report()
		}
	})
	report()
	return cancel
}

func (g *Gate) relevant(key string) bool {
	if key == KeyAuthStatus {
		return true
	}
	if g.variant == WalletAware {
		return key == KeyUser || (g.enforceWallet && key == KeyWalletAddress)
	}
	return false
}

// RedirectToSignIn waits for the redirect delay and then navigates to the
// sign-in entry point. It returns ctx.Err() if cancelled first.
func (g *Gate) RedirectToSignIn(ctx context.Context, navigate func(path string)) error {
	timer := time.NewTimer(g.redirectDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		navigate(routepath.SignIn)
		return nil
	}
}
