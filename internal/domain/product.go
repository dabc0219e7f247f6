package domain

import (
	"strings"
	"time"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// Product is a catalog entity with its own lifecycle. Stock is informational
// only; orders never decrement it.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Currency    string
	Stock       int
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sellable reports whether new order items may reference this product.
func (p *Product) Sellable() bool {
	return p.Status == ProductStatusActive
}

type ProductDraft struct {
	Name        string
	Description string
	Price       float64
	Currency    string
	Stock       int
	Status      ProductStatus
}

func (d ProductDraft) Validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(d.Name) == "" {
		fields["name"] = "must not be empty"
	}
	if d.Price < 0 {
		fields["price"] = "must not be negative"
	}
	if d.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	if d.Status != "" && d.Status != ProductStatusActive && d.Status != ProductStatusInactive {
		fields["status"] = "must be ACTIVE or INACTIVE"
	}

	if len(fields) > 0 {
		return NewValidationError("invalid product payload", fields)
	}
	return nil
}

// NewProduct builds a catalog entry with a generated id and defaults.
func NewProduct(id string, draft ProductDraft) *Product {
	now := time.Now().UTC()

	currency := draft.Currency
	if currency == "" {
		currency = "VND"
	}
	status := draft.Status
	if status == "" {
		status = ProductStatusActive
	}

	return &Product{
		ID:          id,
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Currency:    currency,
		Stock:       draft.Stock,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Currency    *string
	Stock       *int
	Status      *ProductStatus
}

func (u ProductUpdate) Validate() error {
	fields := map[string]string{}

	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		fields["name"] = "must not be empty"
	}
	if u.Price != nil && *u.Price < 0 {
		fields["price"] = "must not be negative"
	}
	if u.Stock != nil && *u.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	if u.Status != nil && *u.Status != ProductStatusActive && *u.Status != ProductStatusInactive {
		fields["status"] = "must be ACTIVE or INACTIVE"
	}

	if len(fields) > 0 {
		return NewValidationError("invalid product update", fields)
	}
	return nil
}

func (p *Product) Apply(update ProductUpdate) {
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Currency != nil {
		p.Currency = *update.Currency
	}
	if update.Stock != nil {
		p.Stock = *update.Stock
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	p.UpdatedAt = time.Now().UTC()
}
