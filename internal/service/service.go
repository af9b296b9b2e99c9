package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"swiftcart/internal/gateway"
	"swiftcart/internal/model"
)

// CartService defines operations for cart management.
type CartService interface {
	// GetCart returns the user's cart, creating it on first access.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	// AddItem adds a product to the cart; re-adding increments the
	// quantity.
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.CartResponse, error)

	// UpdateItemQuantity sets the quantity of a cart item.
	UpdateItemQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error)

	// RemoveItem removes a product from the cart.
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder converts the user's cart into an order in a single
	// atomic transaction: stock checks, stock decrement, price
	// snapshot, order persistence and cart clearing.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// PaymentService drives the payment lifecycle of an order against the
// external gateway.
type PaymentService interface {
	// Initiate opens a gateway transaction for a PENDING order and
	// returns the provider's payment URL.
	Initiate(ctx context.Context, orderID, userID uuid.UUID, req *model.InitiatePaymentRequest) (*model.InitiatePaymentResponse, error)

	// Confirm completes the payment after the provider redirect.
	// Idempotent: confirming an already-PAID order succeeds without a
	// gateway call.
	Confirm(ctx context.Context, orderID uuid.UUID, transactionID string) error

	// Capture charges an AUTHORIZED order.
	Capture(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error)

	// Refund refunds a PAID order, fully or partially.
	Refund(ctx context.Context, orderID uuid.UUID, amount *decimal.Decimal) (*model.RefundInfo, error)

	// Void cancels an AUTHORIZED hold before capture.
	Void(ctx context.Context, orderID uuid.UUID) error
}

// PaymentGateway is the slice of the gateway client the payment
// service uses.
type PaymentGateway interface {
	Request(ctx context.Context, req *gateway.PaymentRequest) (*gateway.Response, error)
	Confirm(ctx context.Context, transactionID string, req *gateway.ConfirmRequest) (*gateway.Response, error)
	Capture(ctx context.Context, transactionID string, req *gateway.ConfirmRequest) (*gateway.Response, error)
	Refund(ctx context.Context, transactionID string, req *gateway.RefundRequest) (*gateway.Response, error)
	Void(ctx context.Context, transactionID string) (*gateway.Response, error)
}

// orderResponse builds the API representation of an order.
func orderResponse(order *model.Order, items []model.OrderItem) *model.OrderResponse {
	return &model.OrderResponse{
		ID:            order.ID,
		Status:        order.Status,
		TotalAmount:   order.TotalAmount,
		TransactionID: order.TransactionID,
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}
