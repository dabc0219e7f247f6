package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePricing(t *testing.T) {
	lines := []PricedLine{
		{Product: Product{ID: "p1", Name: "Widget", Price: 100}, Quantity: 3},
		{Product: Product{ID: "p2", Name: "Gadget", Price: 25}, Quantity: 2},
	}

	pricing, items := CalculatePricing(lines, 20, 10, "VND")

	assert.Equal(t, 350.0, pricing.Subtotal)
	assert.Equal(t, 20.0, pricing.ShippingFee)
	assert.Equal(t, 10.0, pricing.Discount)
	assert.Equal(t, 360.0, pricing.TotalAmount)
	assert.Equal(t, "VND", pricing.Currency)

	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "Widget", items[0].ProductName)
	assert.Equal(t, 100.0, items[0].UnitPrice)
	assert.Equal(t, 300.0, items[0].TotalPrice)
	assert.Equal(t, 50.0, items[1].TotalPrice)
}

func TestCalculatePricingDefaultsCurrency(t *testing.T) {
	pricing, _ := CalculatePricing(nil, 0, 0, "")
	assert.Equal(t, "VND", pricing.Currency)
}

func TestCalculatePricingDoesNotClampNegativeTotal(t *testing.T) {
	lines := []PricedLine{
		{Product: Product{ID: "p1", Name: "Widget", Price: 10}, Quantity: 1},
	}

	pricing, _ := CalculatePricing(lines, 0, 100, "VND")

	assert.Equal(t, -90.0, pricing.TotalAmount)
}
