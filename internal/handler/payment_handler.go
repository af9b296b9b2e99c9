package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swiftcart/internal/model"
	"swiftcart/internal/service"
)

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Initiate handles POST /api/orders/{id}/payment requests.
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	// Body is optional; an empty body means default options.
	var req model.InitiatePaymentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid request body", h.logger)
			return
		}
	}

	resp, err := h.service.Initiate(r.Context(), orderID, uid, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Confirm handles GET /api/payments/confirm requests, the provider's
// redirect target after the payer approves. The order id and
// transaction id arrive as query parameters.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.URL.Query().Get("orderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid or missing orderId", h.logger)
		return
	}

	transactionID := r.URL.Query().Get("transactionId")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "transactionId is required", h.logger)
		return
	}

	if err := h.service.Confirm(r.Context(), orderID, transactionID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Capture handles POST /api/orders/{id}/capture requests.
func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.Capture(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Refund handles POST /api/orders/{id}/refund requests.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	var req model.RefundRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid request body", h.logger)
			return
		}
	}

	info, err := h.service.Refund(r.Context(), orderID, req.Amount)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Void handles POST /api/orders/{id}/void requests.
func (h *PaymentHandler) Void(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	if err := h.service.Void(r.Context(), orderID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
