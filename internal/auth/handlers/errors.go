package handlers

import (
	"errors"
	"net/http"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/brizzai/auth-relay/internal/logger"
	"github.com/brizzai/auth-relay/internal/utils"
	"go.uber.org/zap"
)

// Error codes of the JSON error body
const (
	codeInvalidRequest = "invalid_request"
	codeUnauthorized   = "unauthorized"
	codeNotFound       = "not_found"
	codeUpstream       = "upstream_error"
	codeBadGateway     = "bad_gateway"
	codeServerError    = "server_error"
)

// writeFlowError maps an error returned by the flow controller to a response.
func writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	var stateErr *autherr.StateError
	var upstreamErr *autherr.UpstreamError

	switch {
	case errors.As(err, &stateErr):
		utils.WriteError(w, codeUnauthorized, stateErr.Reason, http.StatusUnauthorized)
	case errors.As(err, &upstreamErr):
		utils.WriteError(w, codeUpstream, upstreamErr.Message, upstreamErr.StatusCode)
	case errors.Is(err, autherr.ErrUnknownProvider):
		utils.WriteError(w, codeNotFound, err.Error(), http.StatusNotFound)
	case errors.Is(err, autherr.ErrConfiguration):
		logger.Ctx(r.Context()).Error("Auth relay is misconfigured", zap.Error(err))
		utils.WriteError(w, codeServerError, "Internal server error", http.StatusInternalServerError)
	case errors.Is(err, autherr.ErrValidation):
		utils.WriteError(w, codeBadGateway, "Unexpected response from identity provider", http.StatusBadGateway)
	default:
		logger.Ctx(r.Context()).Error("Auth flow failed", zap.Error(err))
		utils.WriteError(w, codeBadGateway, "Authentication failed", http.StatusBadGateway)
	}
}
