package wizard

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AlexZinkM/yieldgate/internal/routepath"
	"github.com/AlexZinkM/yieldgate/internal/session"
)

// Option configures a Navigator.
type Option func(*Navigator)

// WithClock overrides the time source used for the auth timestamp.
func WithClock(now func() time.Time) Option {
	return func(n *Navigator) { n.now = now }
}

// WithLogger sets the navigator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) { n.logger = l }
}

// Navigator is one mounted account flow.
type Navigator struct {
	store    session.Store
	navigate func(path string)
	now      func() time.Time
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	signup SignupFields
}

// NewNavigator starts a flow on ModeSelect. navigate is called with the
// destination path when the flow hands off to the protected area.
func NewNavigator(store session.Store, navigate func(path string), opts ...Option) *Navigator {
	n := &Navigator{
		store:    store,
		navigate: navigate,
		now:      time.Now,
		logger:   slog.Default(),
		state:    Initial(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// State returns the current state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Dispatch applies action and performs any resulting effect.
// On error the state is left as it was.
func (n *Navigator) Dispatch(action Action) (State, error) {
	n.mu.Lock()
	next, effect, err := Next(n.state, action)
	if err != nil {
		state := n.state
		n.mu.Unlock()
		return state, err
	}

	var user session.User
	switch effect {
	case EffectCompleteLogin:
		user = session.User{Email: action.(SubmitLogin).Fields.Email}
	case EffectCompleteWalletSetup:
		user = session.User{
			Email:       n.signup.Email,
			AccountType: string(next.AccountType),
			Company:     n.signup.Company,
		}
	}
	if a, ok := action.(SubmitSignup); ok {
		n.signup = a.Fields
	}

	if effect != EffectNone {
		now := n.now()
		user.CreatedAt = now.UTC()
		if err := n.commit(user, now); err != nil {
			state := n.state
			n.mu.Unlock()
			return state, fmt.Errorf("failed to complete flow: %w", err)
		}
	}
	n.state = next
	n.mu.Unlock()

	n.logger.Debug("wizard transition", "action", fmt.Sprintf("%T", action), "step", next.Step.String())
	if effect != EffectNone && n.navigate != nil {
		n.navigate(routepath.Dashboard)
	}
	return next, nil
}

// commit writes the user record and then the auth flag, so a failure never
// leaves the flag set. When the flag cannot be written the previous user
// record is put back.
func (n *Navigator) commit(user session.User, now time.Time) error {
	prev, hadPrev, err := n.store.Get(session.KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read user record: %w", err)
	}
	if err := session.SaveUser(n.store, user); err != nil {
		return err
	}
	if err := session.MarkAuthenticated(n.store, now); err != nil {
		var undo error
		if hadPrev {
			undo = n.store.Set(session.KeyUser, prev)
		} else {
			undo = n.store.Remove(session.KeyUser)
		}
		if undo != nil {
			n.logger.Warn("failed to restore user record", "error", undo)
		}
		return err
	}
	return nil
}

// SelectMode chooses between creating an account and signing in.
func (n *Navigator) SelectMode(mode Mode) error {
	_, err := n.Dispatch(SelectMode{Mode: mode})
	return err
}

// SelectAccountType picks the sign-up branch.
func (n *Navigator) SelectAccountType(t AccountType) error {
	_, err := n.Dispatch(SelectAccountType{Type: t})
	return err
}

// SubmitSignupForm validates the sign-up form and moves on to wallet setup.
func (n *Navigator) SubmitSignupForm(f SignupFields) error {
	_, err := n.Dispatch(SubmitSignup{Fields: f})
	return err
}

// SubmitLoginForm signs in. Any non-empty credentials are accepted.
func (n *Navigator) SubmitLoginForm(f LoginFields) error {
	_, err := n.Dispatch(SubmitLogin{Fields: f})
	return err
}

// ChooseWalletOption finishes the sign-up flow. No wallet is created or imported here.
func (n *Navigator) ChooseWalletOption(o WalletOption) error {
	_, err := n.Dispatch(ChooseWallet{Option: o})
	return err
}

// Back returns to the previous step.
func (n *Navigator) Back() State {
	s, _ := n.Dispatch(Back{})
	return s
}
