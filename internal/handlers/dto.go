package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/order-service/internal/domain"
)

type CustomerPayload struct {
	CustomerID string `json:"customerId,omitempty"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
}

type OrderItemPayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// Client-supplied names and prices are accepted for shape
	// compatibility and ignored: the catalog is the source of truth.
	ProductName string  `json:"productName,omitempty"`
	UnitPrice   float64 `json:"unitPrice,omitempty"`
	TotalPrice  float64 `json:"totalPrice,omitempty"`
}

type PricingPayload struct {
	SubTotal    float64 `json:"subTotal"`
	ShippingFee float64 `json:"shippingFee"`
	Discount    float64 `json:"discount"`
	TotalAmount float64 `json:"totalAmount"`
	Currency    string  `json:"currency,omitempty"`
}

type AddressPayload struct {
	ReceiverName  string `json:"receiverName"`
	ReceiverPhone string `json:"receiverPhone"`
	FullAddress   string `json:"fullAddress"`
}

type ShipperPayload struct {
	ShipperID   string `json:"shipperId,omitempty"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	VehicleType string `json:"vehicleType,omitempty"`
}

type ShippingRequestPayload struct {
	Address *AddressPayload `json:"address,omitempty"`
}

type CreateOrderRequest struct {
	Customer      CustomerPayload         `json:"customer"`
	Items         []OrderItemPayload      `json:"items"`
	Pricing       *PricingPayload         `json:"pricing,omitempty"`
	Shipping      *ShippingRequestPayload `json:"shipping,omitempty"`
	PaymentMethod string                  `json:"paymentMethod,omitempty"`
}

// ToDraft maps the boundary payload onto the workflow input. Of the
// client-declared pricing only shipping fee, discount and currency carry
// over; subtotal and unit prices are always recomputed server-side.
func (r CreateOrderRequest) ToDraft() domain.OrderDraft {
	draft := domain.OrderDraft{
		Customer: domain.Customer{
			ID:    r.Customer.CustomerID,
			Name:  r.Customer.Name,
			Phone: r.Customer.Phone,
			Email: r.Customer.Email,
		},
		PaymentMethod: r.PaymentMethod,
	}

	for _, item := range r.Items {
		draft.Items = append(draft.Items, domain.LineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if r.Pricing != nil {
		draft.ShippingFee = r.Pricing.ShippingFee
		draft.Discount = r.Pricing.Discount
		draft.Currency = r.Pricing.Currency
	}

	if r.Shipping != nil && r.Shipping.Address != nil {
		draft.ReceiverName = r.Shipping.Address.ReceiverName
		draft.ReceiverPhone = r.Shipping.Address.ReceiverPhone
		draft.ReceiverAddress = r.Shipping.Address.FullAddress
	}

	return draft
}

type OrderUpdateRequest struct {
	OrderStatus           *string         `json:"orderStatus"`
	PaymentStatus         *string         `json:"paymentStatus"`
	ShippingStatus        *string         `json:"shippingStatus"`
	ShippingOrderCode     *string         `json:"shippingOrderCode"`
	Shipper               *ShipperPayload `json:"shipper"`
	EstimatedDeliveryTime *time.Time      `json:"estimatedDeliveryTime"`
	DeliveredAt           *time.Time      `json:"deliveredAt"`
	FailedReason          *string         `json:"failedReason"`
}

func (r OrderUpdateRequest) ToUpdate() domain.OrderUpdate {
	update := domain.OrderUpdate{
		PaymentStatus:         r.PaymentStatus,
		ShippingOrderCode:     r.ShippingOrderCode,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		DeliveredAt:           r.DeliveredAt,
		FailedReason:          r.FailedReason,
	}
	if r.OrderStatus != nil {
		status := domain.OrderStatus(*r.OrderStatus)
		update.OrderStatus = &status
	}
	if r.ShippingStatus != nil {
		status := domain.ShippingStatus(*r.ShippingStatus)
		update.ShippingStatus = &status
	}
	if r.Shipper != nil {
		update.Shipper = &domain.Shipper{
			ID:          r.Shipper.ShipperID,
			Name:        r.Shipper.Name,
			Phone:       r.Shipper.Phone,
			VehicleType: r.Shipper.VehicleType,
		}
	}
	return update
}

// ExternalStatusUpdateRequest is the push payload from the shipment
// provider. orderId/orderCode are accepted for compatibility; the path
// parameter is authoritative.
type ExternalStatusUpdateRequest struct {
	OrderID   *uuid.UUID `json:"orderId"`
	OrderCode *string    `json:"orderCode"`
	OrderUpdateRequest
}

type OrderItemResponse struct {
	ID          int64   `json:"id"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

type ShippingResponse struct {
	ShippingOrderCode     string          `json:"shippingOrderCode,omitempty"`
	Status                string          `json:"status"`
	Address               AddressPayload  `json:"address"`
	Shipper               *ShipperPayload `json:"shipper,omitempty"`
	EstimatedDeliveryTime *time.Time      `json:"estimatedDeliveryTime,omitempty"`
	DeliveredAt           *time.Time      `json:"deliveredAt,omitempty"`
	FailedReason          string          `json:"failedReason,omitempty"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderCode     string              `json:"orderCode"`
	Customer      CustomerPayload     `json:"customer"`
	Items         []OrderItemResponse `json:"items"`
	Pricing       PricingPayload      `json:"pricing"`
	Shipping      ShippingResponse    `json:"shipping"`
	OrderStatus   string              `json:"orderStatus"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	PaymentStatus string              `json:"paymentStatus"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func mapOrder(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}

	var shipper *ShipperPayload
	if order.Shipping.Shipper != nil {
		shipper = &ShipperPayload{
			ShipperID:   order.Shipping.Shipper.ID,
			Name:        order.Shipping.Shipper.Name,
			Phone:       order.Shipping.Shipper.Phone,
			VehicleType: order.Shipping.Shipper.VehicleType,
		}
	}

	return OrderResponse{
		ID:        order.ID,
		OrderCode: order.OrderCode,
		Customer: CustomerPayload{
			CustomerID: order.Customer.ID,
			Name:       order.Customer.Name,
			Phone:      order.Customer.Phone,
			Email:      order.Customer.Email,
		},
		Items: items,
		Pricing: PricingPayload{
			SubTotal:    order.Pricing.Subtotal,
			ShippingFee: order.Pricing.ShippingFee,
			Discount:    order.Pricing.Discount,
			TotalAmount: order.Pricing.TotalAmount,
			Currency:    order.Pricing.Currency,
		},
		Shipping: ShippingResponse{
			ShippingOrderCode: order.Shipping.ShippingOrderCode,
			Status:            string(order.Shipping.Status),
			Address: AddressPayload{
				ReceiverName:  order.Shipping.Address.ReceiverName,
				ReceiverPhone: order.Shipping.Address.ReceiverPhone,
				FullAddress:   order.Shipping.Address.FullAddress,
			},
			Shipper:               shipper,
			EstimatedDeliveryTime: order.Shipping.EstimatedDeliveryTime,
			DeliveredAt:           order.Shipping.DeliveredAt,
			FailedReason:          order.Shipping.FailedReason,
		},
		OrderStatus:   string(order.OrderStatus),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func mapOrders(orders []*domain.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = mapOrder(order)
	}
	return responses
}

type ProductCreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Stock       int     `json:"stock,omitempty"`
	Status      string  `json:"status,omitempty"`
}

func (r ProductCreateRequest) ToDraft() domain.ProductDraft {
	return domain.ProductDraft{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Stock:       r.Stock,
		Status:      domain.ProductStatus(r.Status),
	}
}

type ProductUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Stock       *int     `json:"stock"`
	Status      *string  `json:"status"`
}

func (r ProductUpdateRequest) ToUpdate() domain.ProductUpdate {
	update := domain.ProductUpdate{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Stock:       r.Stock,
	}
	if r.Status != nil {
		status := domain.ProductStatus(*r.Status)
		update.Status = &status
	}
	return update
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func mapProduct(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Currency:    product.Currency,
		Stock:       product.Stock,
		Status:      string(product.Status),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func mapProducts(products []*domain.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, product := range products {
		responses[i] = mapProduct(product)
	}
	return responses
}
