package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/AlexZinkM/yieldgate/internal/common"
	"github.com/AlexZinkM/yieldgate/internal/model"
	"github.com/AlexZinkM/yieldgate/internal/profile"
	"github.com/AlexZinkM/yieldgate/internal/wallet"
	"github.com/AlexZinkM/yieldgate/solana"
)

// RateSource quotes SOL in USD.
type RateSource interface {
	GetSOLtoUSDrate(ctx context.Context) (string, error)
}

// WalletHandler exposes one wallet session per browser profile. All sessions
// share the same provider, which is nil when no keystore is configured.
type WalletHandler struct {
	provider     wallet.Provider
	stores       Namespaces
	hub          *Hub
	rates        RateSource
	pollInterval time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*wallet.Session
}

// NewWalletHandler creates a new WalletHandler. provider and rates may be nil.
func NewWalletHandler(provider wallet.Provider, stores Namespaces, hub *Hub, rates RateSource, pollInterval time.Duration, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		provider:     provider,
		stores:       stores,
		hub:          hub,
		rates:        rates,
		pollInterval: pollInterval,
		logger:       logger,
		sessions:     make(map[string]*wallet.Session),
	}
}

func (h *WalletHandler) sessionFor(r *http.Request) *wallet.Session {
	profileID := profile.IDFromContext(r.Context())

	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[profileID]; ok {
		return s
	}
	s := wallet.NewSession(h.provider, h.stores.Namespace(profileID),
		wallet.WithPollInterval(h.pollInterval),
		wallet.WithLogger(h.logger.With("profile", profileID)),
		wallet.WithReloadHook(func(chainID string) {
			h.hub.Publish(profileID, model.Event{Type: "reload", ChainID: chainID})
		}),
		wallet.WithNoticeHook(func(n wallet.Notice) {
			h.hub.Publish(profileID, model.Event{Type: "notice", Notice: string(n.Kind), Message: n.Message})
		}),
	)
	h.sessions[profileID] = s
	return s
}

// Close detaches every session from the provider.
func (h *WalletHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.Close()
		delete(h.sessions, id)
	}
}

// Wallet handles GET /api/wallet
// @Summary      Wallet overview
// @Description  Returns the profile's wallet session, whether a provider is installed and the known networks
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletResponse
// @Router       /api/wallet [get]
func (h *WalletHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	networks := wallet.Networks()
	resp := model.WalletResponse{
		Session:  stateResponse(h.sessionFor(r).State()),
		Provider: h.provider != nil,
		Networks: make([]model.NetworkResponse, 0, len(networks)),
	}
	for _, n := range networks {
		nr := model.NetworkResponse{ChainID: n.ChainID, Name: n.Name, Symbol: n.NativeCurrency.Symbol}
		if len(n.RPCURLs) > 0 {
			nr.RPCURL = n.RPCURLs[0]
		}
		resp.Networks = append(resp.Networks, nr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Connect handles POST /api/wallet/connect
// @Summary      Connect wallet
// @Description  Requests account access from the wallet and records the first account and current chain
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletStateResponse
// @Failure      403  {object}  model.WalletErrorResponse
// @Failure      502  {object}  model.WalletErrorResponse
// @Failure      503  {object}  model.WalletErrorResponse
// @Router       /api/wallet/connect [post]
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessionFor(r).Connect(r.Context())
	if err != nil {
		h.writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(st))
}

// Disconnect handles POST /api/wallet/disconnect
// @Summary      Disconnect wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletStateResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/wallet/disconnect [post]
func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(r)
	if err := s.Disconnect(); err != nil {
		h.logger.Error("disconnect failed", "error", err)
		writeError(w, http.StatusInternalServerError, model.CodeStoreFailure, "failed to clear wallet session")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(s.State()))
}

// SwitchNetwork handles POST /api/wallet/network
// @Summary      Switch network
// @Description  Asks the wallet to switch chains, registering the chain first when the wallet does not know it.
// @Description  On success every tab of the browser receives a reload event.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SwitchNetworkRequest  true  "Target chain"
// @Success      200      {object}  model.WalletStateResponse
// @Failure      400      {object}  model.WalletErrorResponse
// @Failure      403      {object}  model.WalletErrorResponse
// @Failure      502      {object}  model.WalletErrorResponse
// @Router       /api/wallet/network [post]
func (h *WalletHandler) SwitchNetwork(w http.ResponseWriter, r *http.Request) {
	var req model.SwitchNetworkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err.Error())
		return
	}
	if req.ChainID == "" {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, "chainId is required")
		return
	}

	s := h.sessionFor(r)
	if err := s.SwitchNetwork(r.Context(), req.ChainID); err != nil {
		h.writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(s.State()))
}

// Balance handles GET /api/wallet/balance
// @Summary      Get balance (USD = SOL * rate)
// @Description  Gets the SOL balance of an address, the connected account by default, with the SOL/USD rate
// @Tags         wallet
// @Produce      json
// @Param        address  query     string  false  "Address to query"
// @Success      200      {object}  model.BalanceResponse
// @Failure      409      {object}  model.WalletErrorResponse
// @Failure      502      {object}  model.WalletErrorResponse
// @Router       /api/wallet/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(r)
	address := r.URL.Query().Get("address")

	sol, err := s.Balance(r.Context(), address)
	if err != nil {
		h.writeWalletError(w, err)
		return
	}

	st := s.State()
	if address == "" {
		address = st.Account
	}
	resp := model.BalanceResponse{Address: address, ChainID: st.ChainID, SOL: sol}

	// A missing quote still returns the balance.
	if h.rates != nil {
		rate, err := h.rates.GetSOLtoUSDrate(r.Context())
		if err != nil {
			h.logger.Warn("SOL/USD rate unavailable", "error", err)
		} else {
			resp.Rate = rate
			resp.USD = usdValue(sol, rate)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Send handles POST /api/wallet/send
// @Summary      Send SOL
// @Description  Sends SOL from the connected account and waits until the transaction is confirmed
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SendRequest  true  "Payment data"
// @Success      200      {object}  model.SendResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      403      {object}  model.WalletErrorResponse
// @Failure      409      {object}  model.WalletErrorResponse
// @Failure      502      {object}  model.WalletErrorResponse
// @Router       /api/wallet/send [post]
func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.SendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err.Error())
		return
	}
	if req.ToAddress == "" || req.Amount == "" {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, "toAddress and amount are required")
		return
	}
	if cmp, err := common.CompareSOLAmounts(req.Amount, "0"); err != nil || cmp <= 0 {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, "amount must be a positive SOL value")
		return
	}

	sig, err := h.sessionFor(r).SendTransaction(r.Context(), req.ToAddress, req.Amount)
	if err != nil {
		h.writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SendResponse{TxID: sig})
}

// QR handles GET /api/wallet/qr
// @Summary      Receive QR code
// @Description  PNG QR code of the connected account's address
// @Tags         wallet
// @Produce      png
// @Success      200
// @Failure      409  {object}  model.ErrorResponse
// @Router       /api/wallet/qr [get]
func (h *WalletHandler) QR(w http.ResponseWriter, r *http.Request) {
	st := h.sessionFor(r).State()
	if !st.Connected {
		writeError(w, http.StatusConflict, model.CodeNoSession, wallet.ErrNoSession.Error())
		return
	}
	png, err := solana.QRCode(st.Account)
	if err != nil {
		h.logger.Error("qr encoding failed", "error", err)
		writeError(w, http.StatusInternalServerError, model.CodeInternal, "failed to encode QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *WalletHandler) writeWalletError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		// client went away
		return
	}

	status, code := http.StatusBadGateway, model.CodeWalletFailed
	rpcCode, isRPC := wallet.ErrorCode(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, wallet.ErrProviderAbsent):
		status, code = http.StatusServiceUnavailable, model.CodeProviderAbsent
	case wallet.IsNoSession(err):
		status, code = http.StatusConflict, model.CodeNoSession
	case isRPC && rpcCode == wallet.CodeUserRejected:
		status, code = http.StatusForbidden, model.CodeUserRejected
	case isRPC && rpcCode == wallet.CodeInvalidParams, errors.Is(err, wallet.ErrUnknownNetwork):
		status, code = http.StatusBadRequest, model.CodeBadRequest
	}

	notice := wallet.NoticeFor(err)
	writeJSON(w, status, model.WalletErrorResponse{
		Error:   err.Error(),
		Code:    code,
		Notice:  string(notice.Kind),
		Message: notice.Message,
	})
}

func stateResponse(st wallet.State) model.WalletStateResponse {
	return model.WalletStateResponse{Account: st.Account, ChainID: st.ChainID, Connected: st.Connected}
}

func usdValue(sol, rate string) string {
	usd, err := common.MulDecimal(sol, rate, 2)
	if err != nil {
		return ""
	}
	return usd
}
