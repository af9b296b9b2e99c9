package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart represents a user's shopping cart. One cart per user, created
// lazily on first access and destroyed only by emptying.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CartItem is a (cart, product, quantity) row. The (cart, product)
// pair is unique: re-adding a product increments the quantity.
type CartItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// CartLine is a cart item joined with its current product data, as
// read inside the checkout transaction for stock and price checks.
type CartLine struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Stock       int
	IsActive    bool
	Quantity    int
}

// CartResponse is the API representation of a cart with its items.
type CartResponse struct {
	ID    uuid.UUID  `json:"id"`
	Items []CartItem `json:"items"`
}

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the payload for changing a cart item quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}
