package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the keystore password is prompted at runtime and kept in memory - use GetKeystorePasswordBytes()
type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	StorePath       string        `envconfig:"STORE_PATH" default:"data/yieldgate.db"`
	KeystorePath    string        `envconfig:"KEYSTORE_PATH"`
	SolanaChain     string        `envconfig:"SOLANA_CHAIN" default:"mainnet-beta"`
	SolanaRPCURL    string        `envconfig:"SOLANA_RPC_URL"`
	RedirectDelay   time.Duration `envconfig:"SIGNIN_REDIRECT_DELAY" default:"2s"`
	ConfirmPoll     time.Duration `envconfig:"CONFIRM_POLL_INTERVAL" default:"1s"`
	SendCooldown    time.Duration `envconfig:"SEND_COOLDOWN" default:"0s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	EnforceWallet   bool          `envconfig:"GATE_ENFORCE_WALLET" default:"false"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if c.RedirectDelay < 0 {
		return errors.New("SIGNIN_REDIRECT_DELAY must not be negative")
	}
	if c.ConfirmPoll <= 0 {
		return errors.New("CONFIRM_POLL_INTERVAL must be positive")
	}
	if c.SendCooldown < 0 {
		return errors.New("SEND_COOLDOWN must not be negative")
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetStorePath returns path to the sqlite session store
func GetStorePath() string {
	return Get().StorePath
}

// GetKeystorePath returns path to the .cwt keystore; empty means no wallet provider
func GetKeystorePath() string {
	return Get().KeystorePath
}

// GetSolanaChain returns the chain the wallet provider starts on
func GetSolanaChain() string {
	return Get().SolanaChain
}

// GetSolanaRPCURL returns the RPC override for the starting chain
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetRedirectDelay returns the pause before a gate redirects to sign-in
func GetRedirectDelay() time.Duration {
	return Get().RedirectDelay
}

// GetConfirmPoll returns how often a sent transaction is checked for confirmation
func GetConfirmPoll() time.Duration {
	return Get().ConfirmPoll
}

// GetSendCooldown returns the minimum pause between two transfers; zero disables it
func GetSendCooldown() time.Duration {
	return Get().SendCooldown
}

var passwordBytes []byte

// PromptForPassword prompts the user for the keystore password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter keystore password: ")
	if err != nil {
		return err
	}
	passwordBytes = raw
	return nil
}

// ReadPassword reads a non-empty password from the terminal without echo.
// Caller owns the returned slice and should zero it after use.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}

// GetKeystorePasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetKeystorePasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
