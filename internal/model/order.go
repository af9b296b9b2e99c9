package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a priced, immutable order created from a cart.
// Only Status, TransactionID and GatewayResponse change after
// creation; everything else is frozen at checkout time.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status      OrderStatus     `json:"status" db:"status"`

	// ShippingInfo is an opaque structured payload owned by the
	// caller; the core stores it verbatim.
	ShippingInfo json.RawMessage `json:"shippingInfo,omitempty" db:"shipping_info"`

	// TransactionID is the provider's transaction identifier, nil
	// until a gateway transaction exists. The authenticated callback
	// is ground truth: a conflicting id supplied at confirm time
	// overwrites this value.
	TransactionID *string `json:"transactionId,omitempty" db:"transaction_id"`

	// GatewayResponse is the raw payload of the last provider call,
	// kept for audit and idempotent replays.
	GatewayResponse json.RawMessage `json:"-" db:"gateway_response"`

	// AutoCapture records whether the gateway transaction was opened
	// with immediate capture. When false, confirm lands on AUTHORIZED
	// and a separate capture call is required.
	AutoCapture bool `json:"autoCapture" db:"auto_capture"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// OrderItem is an order line. UnitPrice is a snapshot taken at
// order-creation time and never changes afterwards, whatever happens
// to the product's catalogue price.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// CheckoutRequest is the payload for converting a cart into an order.
type CheckoutRequest struct {
	ShippingInfo json.RawMessage `json:"shippingInfo"`
}

// OrderResponse is the API representation of an order with its items.
type OrderResponse struct {
	ID            uuid.UUID       `json:"id"`
	Status        OrderStatus     `json:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TransactionID *string         `json:"transactionId,omitempty"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// InitiatePaymentRequest carries the payment-initiation options.
type InitiatePaymentRequest struct {
	// Capture false opens an authorization hold instead of an
	// immediate charge. Defaults to true.
	Capture *bool `json:"capture,omitempty"`
}

// InitiatePaymentResponse carries the provider redirect URL.
type InitiatePaymentResponse struct {
	TransactionID string `json:"transactionId"`
	PaymentURL    string `json:"paymentUrl"`
}

// RefundRequest is the payload for a full or partial refund. A nil
// Amount refunds the order's full total.
type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// RefundInfo reports the outcome of a refund.
type RefundInfo struct {
	OrderID             uuid.UUID       `json:"orderId"`
	RefundTransactionID string          `json:"refundTransactionId"`
	RefundedAmount      decimal.Decimal `json:"refundedAmount"`
	Status              OrderStatus     `json:"status"`
}
