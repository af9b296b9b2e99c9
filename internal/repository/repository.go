package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"swiftcart/internal/model"
)

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating it on first access.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// GetItems retrieves the items of a cart.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// UpsertItem adds a product to the cart, incrementing the quantity
	// when the product is already present.
	UpsertItem(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error

	// SetItemQuantity sets the quantity of an existing cart item.
	SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error

	// RemoveItem removes a product from the cart.
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error

	// LockLines reads the cart's items joined with current product
	// data inside the given transaction, taking row locks on the
	// products so concurrent checkouts on shared stock serialize.
	LockLines(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartLine, error)

	// ClearItems deletes all items of a cart within the transaction.
	ClearItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID. Returns nil when
	// the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// DecrementStock subtracts quantity from the product's stock
	// within the transaction. The update is guarded by stock >=
	// quantity; a shortfall leaves the row untouched and returns
	// ok=false so the caller can abort.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID. Returns nil when the
	// order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetItems retrieves the line items of an order.
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// SetTransaction stores the provider transaction id, capture mode
	// and raw response on an order without changing its status.
	SetTransaction(ctx context.Context, orderID uuid.UUID, transactionID string, autoCapture bool, gatewayResponse []byte) error

	// UpdatePaymentState applies a compare-and-swap status update:
	// the order moves to the new status only if its current status is
	// one of from. A non-nil transactionID overwrites the stored id;
	// a non-nil gatewayResponse replaces the stored raw response.
	// Returns false when the order's status did not match.
	UpdatePaymentState(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, to model.OrderStatus, transactionID *string, gatewayResponse []byte) (bool, error)
}
