// Serves the onboarding wizard, session gate and wallet API.
// Usage: go run ./cmd/server
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexZinkM/yieldgate/internal/api"
	"github.com/AlexZinkM/yieldgate/internal/client"
	"github.com/AlexZinkM/yieldgate/internal/config"
	"github.com/AlexZinkM/yieldgate/internal/crypto"
	"github.com/AlexZinkM/yieldgate/internal/logging"
	"github.com/AlexZinkM/yieldgate/internal/storage"
	"github.com/AlexZinkM/yieldgate/internal/wallet"
	"github.com/AlexZinkM/yieldgate/solana"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	store, err := storage.OpenSQLite(config.GetStorePath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// No keystore means the browser sees no wallet installed.
	var provider wallet.Provider
	if config.GetKeystorePath() != "" {
		p, err := openProvider(logger)
		if err != nil {
			return err
		}
		defer p.Close()
		provider = p
		logger.Info("wallet provider ready", "address", p.Address(), "chain", config.GetSolanaChain())
	} else {
		logger.Warn("KEYSTORE_PATH not set, running without a wallet provider")
	}

	router := api.SetupRouter(api.Deps{
		Stores:        store,
		Health:        store,
		Provider:      provider,
		Rates:         client.NewCoinGeckoClient(),
		EnforceWallet: cfg.EnforceWallet,
		RedirectDelay: config.GetRedirectDelay(),
		ConfirmPoll:   config.GetConfirmPoll(),
		Logger:        logger,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:    ":" + config.GetPort(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "swagger", "/swagger/index.html")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openProvider(logger *slog.Logger) (*solana.Provider, error) {
	if err := config.PromptForPassword(); err != nil {
		return nil, err
	}
	password, err := config.GetKeystorePasswordBytes()
	if err != nil {
		return nil, err
	}
	defer clear(password)

	// Fail at startup rather than on the first transfer.
	path := config.GetKeystorePath()
	_, secret, err := crypto.DecryptKeystore(path, password)
	if err != nil {
		return nil, err
	}
	clear(secret.PrivateKey)

	opts := []solana.Option{
		solana.WithSendCooldown(config.GetSendCooldown()),
		solana.WithLogger(logger),
	}
	if url := config.GetSolanaRPCURL(); url != "" {
		opts = append(opts, solana.WithRPCURL(url))
	}
	return solana.NewProvider(path, password, config.GetSolanaChain(), opts...)
}
