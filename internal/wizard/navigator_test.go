package wizard_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/yieldgate/internal/routepath"
	"github.com/AlexZinkM/yieldgate/internal/session"
	"github.com/AlexZinkM/yieldgate/internal/storage"
	"github.com/AlexZinkM/yieldgate/internal/wizard"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct{ paths []string }

func (r *recorder) navigate(path string) { r.paths = append(r.paths, path) }

func newNavigator(t *testing.T) (*wizard.Navigator, session.Store, *recorder) {
	t.Helper()
	store := storage.NewMemory().Namespace("profile-1")
	rec := &recorder{}
	nav := wizard.NewNavigator(store, rec.navigate, wizard.WithClock(func() time.Time { return fixedNow }))
	return nav, store, rec
}

func TestLoginWithAnyCredentialsAuthenticates(t *testing.T) {
	nav, store, rec := newNavigator(t)

	require.NoError(t, nav.SelectMode(wizard.SignIn))
	require.NoError(t, nav.SubmitLoginForm(wizard.LoginFields{Email: "a@b.com", Password: "definitely-wrong"}))

	v, ok, err := store.Get(session.KeyAuthStatus)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.AuthenticatedValue, v)

	ts, ok, err := store.Get(session.KeyAuthTimestamp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(fixedNow.UnixMilli(), 10), ts)

	user, err := session.LoadUser(store)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	assert.Equal(t, []string{routepath.Dashboard}, rec.paths)
}

func TestSignupWithOnlyPasswordsAndTermsReachesWalletSetup(t *testing.T) {
	nav, store, rec := newNavigator(t)

	require.NoError(t, nav.SelectMode(wizard.CreateAccount))
	require.NoError(t, nav.SelectAccountType(wizard.Regular))
	require.NoError(t, nav.SubmitSignupForm(wizard.SignupFields{Password: "p", ConfirmPassword: "p", AcceptTerms: true}))
	assert.Equal(t, wizard.WalletSetup, nav.State().Step)

	assert.False(t, session.IsAuthenticated(store))
	assert.Empty(t, rec.paths)
}

func TestWalletSetupCompletesEnterpriseSignup(t *testing.T) {
	nav, store, rec := newNavigator(t)

	require.NoError(t, nav.SelectMode(wizard.CreateAccount))
	require.NoError(t, nav.SelectAccountType(wizard.Enterprise))
	require.NoError(t, nav.SubmitSignupForm(wizard.SignupFields{
		Email:           "ops@acme.io",
		Company:         "Acme",
		Password:        "p",
		ConfirmPassword: "p",
		AcceptTerms:     true,
	}))
	require.NoError(t, nav.ChooseWalletOption(wizard.ImportWallet))

	assert.True(t, session.IsAuthenticated(store))
	user, err := session.LoadUser(store)
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.io", user.Email)
	assert.Equal(t, "enterprise", user.AccountType)
	assert.Equal(t, "Acme", user.Company)
	assert.Equal(t, fixedNow, user.CreatedAt)
	assert.Equal(t, []string{routepath.Dashboard}, rec.paths)
}

func TestInvalidSignupKeepsStepAndWritesNothing(t *testing.T) {
	nav, store, _ := newNavigator(t)

	require.NoError(t, nav.SelectMode(wizard.CreateAccount))
	require.NoError(t, nav.SelectAccountType(wizard.Regular))

	err := nav.SubmitSignupForm(wizard.SignupFields{Password: "p", ConfirmPassword: "q", AcceptTerms: true})
	require.Error(t, err)
	assert.True(t, wizard.IsValidationError(err))
	assert.Equal(t, wizard.RegularSignupForm, nav.State().Step)

	_, ok, err := store.Get(session.KeyAuthStatus)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackOnNavigator(t *testing.T) {
	nav, _, _ := newNavigator(t)

	require.NoError(t, nav.SelectMode(wizard.CreateAccount))
	require.NoError(t, nav.SelectAccountType(wizard.Enterprise))
	assert.Equal(t, wizard.AccountTypeSelect, nav.Back().Step)
	assert.Equal(t, wizard.ModeSelect, nav.Back().Step)
	assert.Equal(t, wizard.ModeSelect, nav.Back().Step)
}

type brokenStore struct{ session.Store }

func (brokenStore) Set(string, string) error { return errors.New("disk full") }

func TestStoreFailureDoesNotNavigate(t *testing.T) {
	rec := &recorder{}
	store := brokenStore{Store: storage.NewMemory().Namespace("p")}
	nav := wizard.NewNavigator(store, rec.navigate)

	require.NoError(t, nav.SelectMode(wizard.SignIn))
	err := nav.SubmitLoginForm(wizard.LoginFields{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.Empty(t, rec.paths)
	assert.Equal(t, wizard.LoginForm, nav.State().Step)
}

// failingKeyStore rejects writes to a single key.
type failingKeyStore struct {
	session.Store
	key string
}

func (f failingKeyStore) Set(key, value string) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.Store.Set(key, value)
}

func TestFailedCompletionLeavesNoSession(t *testing.T) {
	for _, key := range []string{session.KeyUser, session.KeyAuthStatus} {
		t.Run(key, func(t *testing.T) {
			mem := storage.NewMemory().Namespace("p")
			rec := &recorder{}
			nav := wizard.NewNavigator(failingKeyStore{Store: mem, key: key}, rec.navigate)

			require.NoError(t, nav.SelectMode(wizard.SignIn))
			require.Error(t, nav.SubmitLoginForm(wizard.LoginFields{Email: "a@b.com", Password: "x"}))

			assert.False(t, session.IsAuthenticated(mem))
			_, err := session.LoadUser(mem)
			assert.ErrorIs(t, err, session.ErrNoUser)
			assert.Empty(t, rec.paths)
			assert.Equal(t, wizard.LoginForm, nav.State().Step)
		})
	}
}

func TestFailedFlagRestoresPreviousUser(t *testing.T) {
	mem := storage.NewMemory().Namespace("p")
	require.NoError(t, session.SaveUser(mem, session.User{Email: "old@b.com"}))

	nav := wizard.NewNavigator(failingKeyStore{Store: mem, key: session.KeyAuthStatus}, nil)
	require.NoError(t, nav.SelectMode(wizard.SignIn))
	require.Error(t, nav.SubmitLoginForm(wizard.LoginFields{Email: "new@b.com", Password: "x"}))

	user, err := session.LoadUser(mem)
	require.NoError(t, err)
	assert.Equal(t, "old@b.com", user.Email)
}
