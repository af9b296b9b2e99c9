// Package money implements exact-decimal amount arithmetic for order
// totals and gateway payloads. Money never passes through binary
// floating point.
package money

import (
	"github.com/shopspring/decimal"

	"swiftcart/internal/model"
)

// LineTotal returns unit price × quantity for a single order line.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Total recomputes an order's payable amount from its line items.
// This is the authoritative figure: it depends only on the
// snapshotted unit prices, not on the persisted total or any
// client-supplied amount.
func Total(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item.UnitPrice, item.Quantity))
	}
	return total
}

// MinorUnits converts an amount to the currency's minor unit as an
// integer, rounding half-up, in the form the provider expects.
// exponent is the number of minor-unit digits (2 for USD, 0 for JPY).
func MinorUnits(amount decimal.Decimal, exponent int) int64 {
	// Round rounds half away from zero, which is half-up for the
	// non-negative amounts handled here.
	return amount.Shift(int32(exponent)).Round(0).IntPart()
}
