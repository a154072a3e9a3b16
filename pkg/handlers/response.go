package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/services"
)

// maxRequestBytes bounds request bodies; proposals and rosters stay well below it.
const maxRequestBytes = 1 << 20

// ApiResponse is the envelope for every successful API response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// decodeJSON reads a bounded JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status, code := http.StatusInternalServerError, "internal_error"
	var parseErr *llm.ParseError

	switch {
	case errors.Is(err, apperrors.ErrInvalidDemand):
		status, code = http.StatusBadRequest, "invalid_demand"
	case errors.Is(err, apperrors.ErrNoActiveProposal):
		status, code = http.StatusConflict, "no_active_proposal"
	case errors.Is(err, apperrors.ErrDataSourceUnavailable):
		status, code = http.StatusServiceUnavailable, "data_source_unavailable"
	case errors.Is(err, services.ErrDemandParserUnavailable):
		status, code = http.StatusServiceUnavailable, "llm_not_configured"
	case errors.As(err, &parseErr):
		status, code = http.StatusBadGateway, "llm_invalid_response"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("code", code), zap.Error(err))
	} else {
		logger.Info("Request rejected", zap.String("code", code), zap.Error(err))
	}
	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
