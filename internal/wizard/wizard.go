// Package wizard drives the account flow: choosing between sign-up and sign-in,
// picking an account type, filling the matching form, and setting up a wallet.
//
// The flow is a pure transition function over State and Action. Navigator
// wraps it for one mounted flow and performs the effects the function emits.
package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// Step is the screen currently shown.
type Step int

const (
	ModeSelect Step = iota
	AccountTypeSelect
	RegularSignupForm
	EnterpriseSignupForm
	LoginForm
	WalletSetup
)

var stepNames = map[Step]string{
	ModeSelect:           "mode_select",
	AccountTypeSelect:    "account_type_select",
	RegularSignupForm:    "regular_signup_form",
	EnterpriseSignupForm: "enterprise_signup_form",
	LoginForm:            "login_form",
	WalletSetup:          "wallet_setup",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Valid reports whether s is one of the defined steps.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// Mode is the first choice of the flow.
type Mode string

const (
	CreateAccount Mode = "create_account"
	SignIn        Mode = "sign_in"
)

// AccountType is the sign-up branch.
type AccountType string

const (
	Regular    AccountType = "regular"
	Enterprise AccountType = "enterprise"
)

// WalletOption is the choice made on the wallet setup screen.
type WalletOption string

const (
	CreateWallet WalletOption = "create"
	ImportWallet WalletOption = "import"
)

// State is owned by a single mounted flow.
// AccountType is empty until a branch is picked on AccountTypeSelect.
type State struct {
	Step        Step
	AccountType AccountType
}

// Initial is the state a flow starts in.
func Initial() State {
	return State{Step: ModeSelect}
}

// SignupFields is the content of either sign-up form.
// Company is only filled on the enterprise form.
type SignupFields struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Company         string `json:"company,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// LoginFields is the content of the sign-in form.
type LoginFields struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Action is one user-initiated input to the flow.
type Action interface {
	isAction()
}

type (
	SelectMode        struct{ Mode Mode }
	SelectAccountType struct{ Type AccountType }
	SubmitSignup      struct{ Fields SignupFields }
	SubmitLogin       struct{ Fields LoginFields }
	ChooseWallet      struct{ Option WalletOption }
	Back              struct{}
)

func (SelectMode) isAction()        {}
func (SelectAccountType) isAction() {}
func (SubmitSignup) isAction()      {}
func (SubmitLogin) isAction()       {}
func (ChooseWallet) isAction()      {}
func (Back) isAction()              {}

// Effect is a side effect the host must perform after a transition.
type Effect int

const (
	EffectNone Effect = iota
	// EffectCompleteLogin: persist an authenticated session and go to the dashboard.
	EffectCompleteLogin
	// EffectCompleteWalletSetup: persist an authenticated session and go to the dashboard.
	EffectCompleteWalletSetup
)

var (
	// ErrInvalidTransition means the action is not accepted on the current step.
	// Hosts only send it by mistake; it is not a user-facing condition.
	ErrInvalidTransition = errors.New("action not valid for current step")
	// ErrUnknownChoice means an enumerated input had an undefined value.
	ErrUnknownChoice = errors.New("unknown choice")
)

// ValidationError lists the form problems that blocked a submit.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid form: " + strings.Join(e.Problems, "; ")
}

// IsValidationError checks if err is a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Next computes the transition for action from s. On error the state is returned unchanged.
func Next(s State, action Action) (State, Effect, error) {
	switch a := action.(type) {
	case SelectMode:
		if s.Step != ModeSelect {
			return s, EffectNone, invalid(s, a)
		}
		switch a.Mode {
		case CreateAccount:
			return State{Step: AccountTypeSelect, AccountType: s.AccountType}, EffectNone, nil
		case SignIn:
			return State{Step: LoginForm, AccountType: s.AccountType}, EffectNone, nil
		}
		return s, EffectNone, fmt.Errorf("%w: mode %q", ErrUnknownChoice, a.Mode)

	case SelectAccountType:
		if s.Step != AccountTypeSelect {
			return s, EffectNone, invalid(s, a)
		}
		switch a.Type {
		case Regular:
			return State{Step: RegularSignupForm, AccountType: Regular}, EffectNone, nil
		case Enterprise:
			return State{Step: EnterpriseSignupForm, AccountType: Enterprise}, EffectNone, nil
		}
		return s, EffectNone, fmt.Errorf("%w: account type %q", ErrUnknownChoice, a.Type)

	case SubmitSignup:
		if s.Step != RegularSignupForm && s.Step != EnterpriseSignupForm {
			return s, EffectNone, invalid(s, a)
		}
		if err := ValidateSignup(a.Fields); err != nil {
			return s, EffectNone, err
		}
		return State{Step: WalletSetup, AccountType: s.AccountType}, EffectNone, nil

	case SubmitLogin:
		if s.Step != LoginForm {
			return s, EffectNone, invalid(s, a)
		}
		if err := ValidateLogin(a.Fields); err != nil {
			return s, EffectNone, err
		}
		return s, EffectCompleteLogin, nil

	case ChooseWallet:
		if s.Step != WalletSetup {
			return s, EffectNone, invalid(s, a)
		}
		if a.Option != CreateWallet && a.Option != ImportWallet {
			return s, EffectNone, fmt.Errorf("%w: wallet option %q", ErrUnknownChoice, a.Option)
		}
		return s, EffectCompleteWalletSetup, nil

	case Back:
		return back(s), EffectNone, nil
	}
	return s, EffectNone, fmt.Errorf("%w: %T", ErrInvalidTransition, action)
}

func back(s State) State {
	switch s.Step {
	case AccountTypeSelect, LoginForm:
		return State{Step: ModeSelect, AccountType: s.AccountType}
	case RegularSignupForm, EnterpriseSignupForm:
		return State{Step: AccountTypeSelect, AccountType: s.AccountType}
	case WalletSetup:
		if s.AccountType == Regular {
			return State{Step: RegularSignupForm, AccountType: Regular}
		}
		return State{Step: EnterpriseSignupForm, AccountType: s.AccountType}
	default:
		return s
	}
}

func invalid(s State, a Action) error {
	return fmt.Errorf("%w: %T on %s", ErrInvalidTransition, a, s.Step)
}

// ValidateSignup checks that the passwords match and the terms are accepted.
func ValidateSignup(f SignupFields) error {
	var problems []string
	if f.Password != f.ConfirmPassword {
		problems = append(problems, "passwords do not match")
	}
	if !f.AcceptTerms {
		problems = append(problems, "terms must be accepted")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateLogin only checks that the required fields are present.
// There is no credential check.
func ValidateLogin(f LoginFields) error {
	var problems []string
	if strings.TrimSpace(f.Email) == "" {
		problems = append(problems, "email is required")
	}
	if f.Password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
