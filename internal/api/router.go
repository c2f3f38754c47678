package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlexZinkM/yieldgate/docs"
	"github.com/AlexZinkM/yieldgate/internal/handler"
	"github.com/AlexZinkM/yieldgate/internal/profile"
	"github.com/AlexZinkM/yieldgate/internal/wallet"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Stores        handler.Namespaces
	Health        handler.Pinger
	Provider      wallet.Provider // nil when no keystore is configured
	Rates         handler.RateSource
	EnforceWallet bool
	RedirectDelay time.Duration
	ConfirmPoll   time.Duration
	Logger        *slog.Logger
}

// Router serves the API. Close releases the per-profile wallet sessions.
type Router struct {
	http.Handler
	wallet *handler.WalletHandler
}

// Close detaches wallet sessions from the provider.
func (r *Router) Close() {
	r.wallet.Close()
}

// SetupRouter sets up router with handlers
func SetupRouter(d Deps) *Router {
	hub := handler.NewHub(d.Logger)
	wizardHandler := handler.NewWizardHandler(d.Stores, hub, d.Logger)
	gateHandler := handler.NewGateHandler(d.Stores, hub, d.EnforceWallet, d.RedirectDelay, d.Logger)
	walletHandler := handler.NewWalletHandler(d.Provider, d.Stores, hub, d.Rates, d.ConfirmPoll, d.Logger)

	r := mux.NewRouter()
	r.Use(recoverer(d.Logger), requestLogger(d.Logger))

	r.HandleFunc("/healthz", handler.Health(d.Health, d.Logger)).Methods("GET")

	// Swagger UI
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(profile.Middleware(d.Logger))

	// Account flow
	api.HandleFunc("/wizard", wizardHandler.Mount).Methods("POST")
	api.HandleFunc("/wizard/{id}", wizardHandler.Get).Methods("GET")
	api.HandleFunc("/wizard/{id}", wizardHandler.Unmount).Methods("DELETE")
	api.HandleFunc("/wizard/{id}/actions", wizardHandler.Act).Methods("POST")

	// Access gate
	api.HandleFunc("/gate", gateHandler.State).Methods("GET")
	api.HandleFunc("/gate/events", gateHandler.Events).Methods("GET")
	api.HandleFunc("/session/signout", gateHandler.SignOut).Methods("POST")

	// Wallet
	api.HandleFunc("/wallet", walletHandler.Wallet).Methods("GET")
	api.HandleFunc("/wallet/connect", walletHandler.Connect).Methods("POST")
	api.HandleFunc("/wallet/disconnect", walletHandler.Disconnect).Methods("POST")
	api.HandleFunc("/wallet/network", walletHandler.SwitchNetwork).Methods("POST")
	api.HandleFunc("/wallet/balance", walletHandler.Balance).Methods("GET")
	api.HandleFunc("/wallet/send", walletHandler.Send).Methods("POST")
	api.HandleFunc("/wallet/qr", walletHandler.QR).Methods("GET")

	return &Router{Handler: r, wallet: walletHandler}
}
