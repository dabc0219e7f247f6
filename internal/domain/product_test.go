package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductDefaults(t *testing.T) {
	product := NewProduct("p1", ProductDraft{Name: "Widget", Price: 100})

	assert.Equal(t, "VND", product.Currency)
	assert.Equal(t, ProductStatusActive, product.Status)
	assert.True(t, product.Sellable())
}

func TestProductDraftValidate(t *testing.T) {
	assert.NoError(t, ProductDraft{Name: "Widget", Price: 10}.Validate())

	err := ProductDraft{Name: " ", Price: -1, Stock: -2, Status: "BROKEN"}.Validate()
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "price")
	assert.Contains(t, validationErr.Fields, "stock")
	assert.Contains(t, validationErr.Fields, "status")
}

func TestProductApply(t *testing.T) {
	product := NewProduct("p1", ProductDraft{Name: "Widget", Price: 100, Stock: 5})

	price := 120.0
	status := ProductStatusInactive
	product.Apply(ProductUpdate{Price: &price, Status: &status})

	assert.Equal(t, 120.0, product.Price)
	assert.Equal(t, ProductStatusInactive, product.Status)
	assert.False(t, product.Sellable())
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, 5, product.Stock)
}

func TestProductUpdateValidate(t *testing.T) {
	blank := "  "
	negative := -5.0

	err := ProductUpdate{Name: &blank, Price: &negative}.Validate()
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "price")
}
