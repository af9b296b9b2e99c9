package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	ErrCodeAmountMismatch     = "AMOUNT_MISMATCH"
	ErrCodeGatewayRejected    = "GATEWAY_REJECTED"
	ErrCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure carrying a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrCartNotFound    = NewDomainError(ErrCodeNotFound, "Cart not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrProductNotFound = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidQuantity = NewDomainError(ErrCodeValidation, "Quantity must be greater than zero")
)

// InsufficientStockError reports a stock shortfall with enough detail
// for the caller to act: which product, and how many units remain.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Remaining   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, %d remaining",
		e.ProductName, e.Requested, e.Remaining)
}

// ProductUnavailableError reports an inactive product in the cart.
type ProductUnavailableError struct {
	ProductID   string
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available for purchase", e.ProductName)
}

// ConflictError reports a payment state machine guard violation.
type ConflictError struct {
	OrderID  string
	Current  OrderStatus
	Required OrderStatus
	Op       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s requires order status %s, order %s is %s",
		e.Op, e.Required, e.OrderID, e.Current)
}

// GatewayError reports a failure returned by or while reaching the
// payment provider. Retryable is true for timeouts and transport
// failures where no financial state has been confirmed either way.
type GatewayError struct {
	Op         string
	ReturnCode string
	Message    string
	Retryable  bool
	Err        error
}

func (e *GatewayError) Error() string {
	if e.ReturnCode != "" {
		return fmt.Sprintf("gateway %s rejected: %s (%s)", e.Op, e.Message, e.ReturnCode)
	}
	return fmt.Sprintf("gateway %s unavailable: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
