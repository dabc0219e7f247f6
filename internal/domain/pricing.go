package domain

// PricedLine pairs a catalog product, as read at calculation time, with the
// requested quantity.
type PricedLine struct {
	Product  Product
	Quantity int
}

// CalculatePricing snapshots unit prices from the catalog and computes the
// order totals. Any client-supplied unit price or subtotal is ignored by
// construction: the calculator only ever sees catalog prices.
//
// The total is subtotal + shippingFee - discount and is deliberately not
// clamped at zero; a discount exceeding subtotal+shipping surfaces as a
// negative total (known gap, pending product-owner clarification).
func CalculatePricing(lines []PricedLine, shippingFee, discount float64, currency string) (Pricing, []OrderItem) {
	if currency == "" {
		currency = "VND"
	}

	items := make([]OrderItem, 0, len(lines))
	var subtotal float64

	for _, line := range lines {
		totalPrice := line.Product.Price * float64(line.Quantity)
		subtotal += totalPrice
		items = append(items, OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
			TotalPrice:  totalPrice,
		})
	}

	return Pricing{
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Discount:    discount,
		TotalAmount: subtotal + shippingFee - discount,
		Currency:    currency,
	}, items
}
