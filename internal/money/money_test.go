package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftcart/internal/model"
)

func item(price string, qty int) model.OrderItem {
	return model.OrderItem{
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []model.OrderItem
		expected string
	}{
		{
			name:     "Empty order",
			items:    nil,
			expected: "0",
		},
		{
			name:     "Single line",
			items:    []model.OrderItem{item("299.00", 2)},
			expected: "598.00",
		},
		{
			name: "Multiple lines",
			items: []model.OrderItem{
				item("10.50", 3),
				item("0.99", 7),
				item("1250.00", 1),
			},
			expected: "1288.43",
		},
		{
			name: "Sub-cent precision survives summation",
			items: []model.OrderItem{
				item("0.1", 1),
				item("0.2", 1),
			},
			expected: "0.3",
		},
		{
			name: "Large quantities",
			items: []model.OrderItem{
				item("19.99", 100000),
			},
			expected: "1999000.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := Total(tt.items)
			// Exact decimal comparison, no epsilon.
			assert.True(t, total.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", total, tt.expected)
		})
	}
}

func TestTotalMatchesLineByLineAccumulation(t *testing.T) {
	// Reconciliation property: whatever combination of prices and
	// quantities, Total equals the exact sum of the line totals.
	prices := []string{"0.01", "0.07", "3.33", "299.00", "10249.95"}
	quantities := []int{1, 2, 9, 41, 250}

	var items []model.OrderItem
	expected := decimal.Zero
	for i, p := range prices {
		items = append(items, item(p, quantities[i]))
		expected = expected.Add(decimal.RequireFromString(p).
			Mul(decimal.NewFromInt(int64(quantities[i]))))
	}

	require.True(t, Total(items).Equal(expected))
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		exponent int
		expected int64
	}{
		{"Whole dollars", "598.00", 2, 59800},
		{"Zero", "0", 2, 0},
		{"Half cent rounds up", "1.005", 2, 101},
		{"Below half cent rounds down", "1.004", 2, 100},
		{"Zero-exponent currency", "1234", 0, 1234},
		{"Zero-exponent half rounds up", "1234.5", 0, 1235},
		{"Already minor precision", "19.99", 2, 1999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinorUnits(decimal.RequireFromString(tt.amount), tt.exponent)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("299.00"), 2)
	assert.True(t, got.Equal(decimal.RequireFromString("598.00")))
}
