package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/AlexZinkM/yieldgate/internal/model"
	"github.com/AlexZinkM/yieldgate/internal/profile"
	"github.com/AlexZinkM/yieldgate/internal/wizard"
)

// WizardHandler serves mounted account flows. Each flow belongs to the
// profile that mounted it.
type WizardHandler struct {
	stores Namespaces
	hub    *Hub
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	flows map[string]*flow
}

// Abandoned flows are dropped after flowIdleTTL; a profile keeps at most
// maxFlowsPerProfile, oldest evicted first.
const (
	flowIdleTTL        = 30 * time.Minute
	maxFlowsPerProfile = 16
)

type flow struct {
	profileID string
	nav       *wizard.Navigator
	lastSeen  time.Time // guarded by WizardHandler.mu

	mu        sync.Mutex
	navigated string
}

func (f *flow) lastNavigation() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigated
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(stores Namespaces, hub *Hub, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{
		stores: stores,
		hub:    hub,
		logger: logger,
		now:    time.Now,
		flows:  make(map[string]*flow),
	}
}

// evictLocked drops idle flows and makes room for one more flow of profileID.
func (h *WizardHandler) evictLocked(profileID string, now time.Time) {
	var oldestID string
	var oldest time.Time
	owned := 0
	for id, f := range h.flows {
		if now.Sub(f.lastSeen) > flowIdleTTL {
			delete(h.flows, id)
			continue
		}
		if f.profileID != profileID {
			continue
		}
		owned++
		if oldestID == "" || f.lastSeen.Before(oldest) {
			oldestID, oldest = id, f.lastSeen
		}
	}
	if owned >= maxFlowsPerProfile {
		delete(h.flows, oldestID)
		h.logger.Debug("evicted oldest wizard flow", "profile", profileID, "flow", oldestID)
	}
}

// Mount handles POST /api/wizard
// @Summary      Start an account flow
// @Description  Mounts a new sign-up / sign-in flow on the mode selection step
// @Tags         wizard
// @Produce      json
// @Success      201  {object}  model.WizardResponse
// @Router       /api/wizard [post]
func (h *WizardHandler) Mount(w http.ResponseWriter, r *http.Request) {
	profileID := profile.IDFromContext(r.Context())
	id := uuid.NewString()

	f := &flow{profileID: profileID}
	f.nav = wizard.NewNavigator(h.stores.Namespace(profileID), func(path string) {
		f.mu.Lock()
		f.navigated = path
		f.mu.Unlock()
		h.hub.Publish(profileID, model.Event{Type: "navigate", Path: path})
	}, wizard.WithLogger(h.logger))

	h.mu.Lock()
	now := h.now()
	h.evictLocked(profileID, now)
	f.lastSeen = now
	h.flows[id] = f
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, wizardResponse(id, f))
}

// Get handles GET /api/wizard/{id}
// @Summary      Get an account flow
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Flow ID"
// @Success      200  {object}  model.WizardResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /api/wizard/{id} [get]
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, f, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wizardResponse(id, f))
}

// Unmount handles DELETE /api/wizard/{id}
// @Summary      Discard an account flow
// @Tags         wizard
// @Param        id   path      string  true  "Flow ID"
// @Success      204
// @Failure      404  {object}  model.ErrorResponse
// @Router       /api/wizard/{id} [delete]
func (h *WizardHandler) Unmount(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.mu.Lock()
	delete(h.flows, id)
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// Act handles POST /api/wizard/{id}/actions
// @Summary      Apply an action to an account flow
// @Description  Moves the flow to its next step. Completing sign-in or wallet setup
// @Description  marks the browser session authenticated and returns the dashboard path in navigate.
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Flow ID"
// @Param        request  body      model.WizardActionRequest  true  "Action"
// @Success      200      {object}  model.WizardResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ValidationErrorResponse
// @Router       /api/wizard/{id}/actions [post]
func (h *WizardHandler) Act(w http.ResponseWriter, r *http.Request) {
	id, f, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req model.WizardActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err.Error())
		return
	}
	action, err := toAction(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err.Error())
		return
	}

	_, err = f.nav.Dispatch(action)
	var verr *wizard.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, wizardResponse(id, f))
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, model.ValidationErrorResponse{
			Error:    verr.Error(),
			Code:     model.CodeValidation,
			Problems: verr.Problems,
		})
	case errors.Is(err, wizard.ErrInvalidTransition):
		writeError(w, http.StatusConflict, model.CodeInvalidStep, err.Error())
	case errors.Is(err, wizard.ErrUnknownChoice):
		writeError(w, http.StatusBadRequest, model.CodeBadRequest, err.Error())
	default:
		h.logger.Error("wizard action failed", "flow", id, "error", err)
		writeError(w, http.StatusInternalServerError, model.CodeStoreFailure, "failed to save session")
	}
}

func (h *WizardHandler) lookup(w http.ResponseWriter, r *http.Request) (string, *flow, bool) {
	id := mux.Vars(r)["id"]
	profileID := profile.IDFromContext(r.Context())

	h.mu.Lock()
	f, ok := h.flows[id]
	now := h.now()
	if ok && now.Sub(f.lastSeen) > flowIdleTTL {
		delete(h.flows, id)
		ok = false
	}
	if ok && f.profileID == profileID {
		f.lastSeen = now
	}
	h.mu.Unlock()

	if !ok || f.profileID != profileID {
		writeError(w, http.StatusNotFound, model.CodeNotFound, "flow not found")
		return "", nil, false
	}
	return id, f, true
}

func wizardResponse(id string, f *flow) model.WizardResponse {
	st := f.nav.State()
	return model.WizardResponse{
		ID:          id,
		Step:        st.Step.String(),
		AccountType: string(st.AccountType),
		Navigate:    f.lastNavigation(),
	}
}

var errMissingForm = errors.New("form is required for this action")

func toAction(req model.WizardActionRequest) (wizard.Action, error) {
	switch req.Type {
	case "select_mode":
		return wizard.SelectMode{Mode: wizard.Mode(req.Mode)}, nil
	case "select_account_type":
		return wizard.SelectAccountType{Type: wizard.AccountType(req.AccountType)}, nil
	case "submit_signup":
		if req.Signup == nil {
			return nil, errMissingForm
		}
		return wizard.SubmitSignup{Fields: wizard.SignupFields{
			Name:            req.Signup.Name,
			Email:           req.Signup.Email,
			Company:         req.Signup.Company,
			Password:        req.Signup.Password,
			ConfirmPassword: req.Signup.ConfirmPassword,
			AcceptTerms:     req.Signup.AcceptTerms,
		}}, nil
	case "submit_login":
		if req.Login == nil {
			return nil, errMissingForm
		}
		return wizard.SubmitLogin{Fields: wizard.LoginFields{
			Email:    req.Login.Email,
			Password: req.Login.Password,
		}}, nil
	case "choose_wallet":
		return wizard.ChooseWallet{Option: wizard.WalletOption(req.Option)}, nil
	case "back":
		return wizard.Back{}, nil
	}
	return nil, errors.New("unknown action type " + `"` + req.Type + `"`)
}
