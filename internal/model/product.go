package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue product. The catalogue itself is
// owned elsewhere; the core reads price/stock/active and mutates
// stock inside the checkout transaction.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	IsActive  bool            `json:"isActive" db:"is_active"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
