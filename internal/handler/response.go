// internal/handler/response.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 10 << 20

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	var (
		validation *appErrors.ValidationError
		empty      *appErrors.EmptySelectionError
		notFound   *appErrors.NotFoundError
		conflict   *appErrors.ConflictError
		provider   *appErrors.ProviderError
		workflow   *appErrors.WorkflowError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &empty):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &provider), errors.As(err, &workflow):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes {"error": ...}. Internal errors are logged and hidden.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.OrNop(log).Error("❌ request failed", zap.Error(err))
		msg = "internal server error"
	}
	WriteJSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON reads a JSON body into v. Malformed input is a ValidationError.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return appErrors.NewValidation("body", "request body is required")
		}
		return appErrors.NewValidation("body", fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
