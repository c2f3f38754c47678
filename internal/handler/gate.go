package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlexZinkM/yieldgate/internal/model"
	"github.com/AlexZinkM/yieldgate/internal/profile"
	"github.com/AlexZinkM/yieldgate/internal/routepath"
	"github.com/AlexZinkM/yieldgate/internal/session"
)

const heartbeatInterval = 15 * time.Second

// GateHandler answers whether a browser may see protected content and
// streams changes to that answer.
type GateHandler struct {
	stores        Namespaces
	hub           *Hub
	logger        *slog.Logger
	enforceWallet bool
	redirectDelay time.Duration
}

// NewGateHandler creates a new GateHandler
func NewGateHandler(stores Namespaces, hub *Hub, enforceWallet bool, redirectDelay time.Duration, logger *slog.Logger) *GateHandler {
	return &GateHandler{
		stores:        stores,
		hub:           hub,
		logger:        logger,
		enforceWallet: enforceWallet,
		redirectDelay: redirectDelay,
	}
}

func (h *GateHandler) gateFor(r *http.Request) (*session.Gate, bool) {
	variant, ok := session.ParseVariant(r.URL.Query().Get("variant"))
	if !ok {
		return nil, false
	}
	store := h.stores.Namespace(profile.IDFromContext(r.Context()))
	return session.NewGate(store, variant,
		session.WithEnforceWallet(h.enforceWallet),
		session.WithRedirectDelay(h.redirectDelay),
		session.WithGateLogger(h.logger),
	), true
}

// State handles GET /api/gate
// @Summary      Resolve access state
// @Description  Resolves the browser session to an access state. Unauthenticated
// @Description  responses carry the sign-in path the page should redirect to.
// @Tags         gate
// @Produce      json
// @Param        variant  query     string  false  "Gate variant"  Enums(simple, wallet)
// @Success      200      {object}  model.GateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /api/gate [get]
func (h *GateHandler) State(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gateFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, "variant must be simple or wallet")
		return
	}
	writeJSON(w, http.StatusOK, gateResponse(gate.Resolve()))
}

// Events handles GET /api/gate/events
// @Summary      Stream access state changes
// @Description  Server-sent events. Emits the current state first, then every change made
// @Description  from any tab of the same browser, a delayed redirect event while
// @Description  unauthenticated, and navigate, reload and notice events for the profile.
// @Tags         gate
// @Produce      text/event-stream
// @Param        variant  query     string  false  "Gate variant"  Enums(simple, wallet)
// @Success      200      {object}  model.Event
// @Failure      400      {object}  model.ErrorResponse
// @Router       /api/gate/events [get]
func (h *GateHandler) Events(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gateFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, "variant must be simple or wallet")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, model.CodeInternal, "streaming unsupported")
		return
	}

	ctx := r.Context()
	profileID := profile.IDFromContext(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	local := make(chan model.Event, eventBuffer)
	send := func(ev model.Event) {
		select {
		case local <- ev:
		default:
			h.logger.Warn("dropping gate event", "profile", profileID, "type", ev.Type)
		}
	}

	shared, unsubscribe := h.hub.Subscribe(profileID)
	defer unsubscribe()
	stopWatch := gate.Watch(func(st session.AccessState) {
		send(model.Event{Type: "gate", State: st.String()})
	})
	defer stopWatch()

	var cancelRedirect context.CancelFunc
	defer func() {
		if cancelRedirect != nil {
			cancelRedirect()
		}
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-local:
			if ev.Type == "gate" {
				unauthenticated := ev.State == session.Unauthenticated.String()
				switch {
				case unauthenticated && cancelRedirect == nil:
					var redirectCtx context.Context
					redirectCtx, cancelRedirect = context.WithCancel(ctx)
					go func() {
						_ = gate.RedirectToSignIn(redirectCtx, func(path string) {
							send(model.Event{Type: "redirect", Path: path})
						})
					}()
				case !unauthenticated && cancelRedirect != nil:
					cancelRedirect()
					cancelRedirect = nil
				}
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
		case ev := <-shared:
			if err := writeEvent(w, ev); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

// SignOut handles POST /api/session/signout
// @Summary      Sign out
// @Description  Clears the browser session. Every open gate of the browser re-evaluates.
// @Tags         gate
// @Produce      json
// @Success      200  {object}  model.GateResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/session/signout [post]
func (h *GateHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	profileID := profile.IDFromContext(r.Context())
	if err := session.SignOut(h.stores.Namespace(profileID)); err != nil {
		h.logger.Error("sign out failed", "profile", profileID, "error", err)
		writeError(w, http.StatusInternalServerError, model.CodeStoreFailure, "failed to clear session")
		return
	}
	writeJSON(w, http.StatusOK, gateResponse(session.Unauthenticated))
}

func gateResponse(st session.AccessState) model.GateResponse {
	resp := model.GateResponse{State: st.String()}
	if st == session.Unauthenticated {
		resp.Redirect = routepath.SignIn
	}
	return resp
}

func writeEvent(w http.ResponseWriter, ev model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
