// Package handlers exposes the OAuth relay over HTTP.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/auth/flow"
	"github.com/brizzai/auth-relay/internal/auth/tokens"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

var (
	nonceRule    = fmt.Sprintf("min=%d", constants.MinNonceLength)
	nonceMessage = fmt.Sprintf("nonce must be at least %d characters", constants.MinNonceLength)
)

type finalizeRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
}

// Handler handles OAuth relay HTTP requests
type Handler struct {
	flow     *flow.Controller
	tokens   *tokens.Service
	cookies  CookiePolicy
	validate *validator.Validate
}

// NewHandler creates a new Handler instance
func NewHandler(cfg *config.Config, controller *flow.Controller, tokenService *tokens.Service) *Handler {
	return &Handler{
		flow:     controller,
		tokens:   tokenService,
		cookies:  NewCookiePolicy(cfg),
		validate: validator.New(),
	}
}

// HandleInit handles GET /v1/auth/init/{provider}
func (h *Handler) HandleInit(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	nonce := r.URL.Query().Get("nonce")
	if err := h.validate.Var(nonce, nonceRule); err != nil {
		utils.WriteError(w, codeInvalidRequest, nonceMessage, http.StatusUnprocessableEntity)
		return
	}

	store := newCookieStore(w, r, h.cookies, provider)
	state, err := h.flow.Init(r.Context(), provider, nonce, store)
	if err != nil {
		writeFlowError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"state": state})
}

// HandleFinalize handles POST /v1/auth/finalize/{provider}
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	var req finalizeRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.WriteError(w, codeInvalidRequest, "Invalid request body", http.StatusUnprocessableEntity)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteError(w, codeInvalidRequest, "code and state are required", http.StatusUnprocessableEntity)
		return
	}

	store := newCookieStore(w, r, h.cookies, provider)
	token, err := h.flow.Finalize(r.Context(), provider, req.Code, req.State, store)
	if err != nil {
		writeFlowError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleCerts handles GET /v1/auth/certs
func (h *Handler) HandleCerts(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.tokens.JWKS())
}

// HandleHealth handles GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
