package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swiftcart/internal/model"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto the HTTP surface. Every
// business failure carries a stable code; anything unrecognised is an
// internal error and its detail stays out of the response.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, domainStatus(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeError(w, http.StatusConflict, model.ErrCodeInsufficientStock, stockErr.Error(), logger)
		return
	}

	var unavailErr *model.ProductUnavailableError
	if errors.As(err, &unavailErr) {
		writeError(w, http.StatusConflict, model.ErrCodeProductUnavailable, unavailErr.Error(), logger)
		return
	}

	var conflictErr *model.ConflictError
	if errors.As(err, &conflictErr) {
		writeError(w, http.StatusConflict, model.ErrCodeConflict, conflictErr.Error(), logger)
		return
	}

	var gwErr *model.GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Retryable {
			writeError(w, http.StatusBadGateway, model.ErrCodeGatewayUnavailable, gwErr.Error(), logger)
		} else {
			writeError(w, http.StatusUnprocessableEntity, model.ErrCodeGatewayRejected, gwErr.Error(), logger)
		}
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// userID reads the caller's identity from the X-User-ID header. The
// gateway in front of this service authenticates the user and injects
// the header.
func userID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, model.NewDomainError(model.ErrCodeUnauthorised, "X-User-ID header is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeUnauthorised, "X-User-ID header is not a valid UUID")
	}
	return id, nil
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmptyCart:
		return http.StatusUnprocessableEntity
	case model.ErrCodeConflict:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
