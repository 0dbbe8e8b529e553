package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/brizzai/auth-relay/internal/logger"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies read by ReadJSON
const maxBodyBytes = 64 << 10

// WriteJSON writes data as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code, message string, status int) {
	WriteJSON(w, status, map[string]string{
		"error":             code,
		"error_description": message,
	})
}

// ReadJSON decodes a size-limited JSON request body into v
func ReadJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
