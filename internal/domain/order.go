package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type ShippingStatus string

const (
	ShippingStatusNotCreated ShippingStatus = "NOT_CREATED"
	ShippingStatusCreated    ShippingStatus = "CREATED"
	ShippingStatusPicked     ShippingStatus = "PICKED"
	ShippingStatusDelivering ShippingStatus = "DELIVERING"
	ShippingStatusDelivered  ShippingStatus = "DELIVERED"
	ShippingStatusFailed     ShippingStatus = "FAILED"
	ShippingStatusCancelled  ShippingStatus = "CANCELLED"
)

const (
	PaymentMethodCOD          = "COD"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodCreditCard   = "CREDIT_CARD"
	PaymentMethodPaypal       = "PAYPAL"

	PaymentStatusPending = "PENDING"
)

// DefaultReceiverAddress keeps the shipment provider happy when the client
// sends no address; the provider rejects blank addresses.
const DefaultReceiverAddress = "Ho Chi Minh City, Vietnam"

// PaymentMethods lists the documented payment method enumeration.
func PaymentMethods() []string {
	return []string{
		PaymentMethodCOD,
		PaymentMethodBankTransfer,
		PaymentMethodCreditCard,
		PaymentMethodPaypal,
	}
}

type Customer struct {
	ID    string
	Name  string
	Phone string
	Email string
}

type Address struct {
	ReceiverName  string
	ReceiverPhone string
	FullAddress   string
}

type Shipper struct {
	ID          string `json:"shipperId,omitempty"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	VehicleType string `json:"vehicleType,omitempty"`
}

type Pricing struct {
	Subtotal    float64
	ShippingFee float64
	Discount    float64
	TotalAmount float64
	Currency    string
}

type Shipping struct {
	ShippingOrderCode     string
	Status                ShippingStatus
	Address               Address
	Shipper               *Shipper
	EstimatedDeliveryTime *time.Time
	DeliveredAt           *time.Time
	FailedReason          string
}

// OrderItem snapshots the product name and unit price at order time. Later
// catalog changes never alter it. Items are set once at creation and only
// removed by cascading order deletion.
type OrderItem struct {
	ID          int64
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
}

type Order struct {
	ID            uuid.UUID
	OrderCode     string
	Customer      Customer
	Items         []OrderItem
	Pricing       Pricing
	Shipping      Shipping
	OrderStatus   OrderStatus
	PaymentMethod string
	PaymentStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder builds the in-memory aggregate for the creation workflow. It is
// not persisted until the shipment gateway confirms.
func NewOrder(orderCode string, draft OrderDraft, items []OrderItem, pricing Pricing) *Order {
	now := time.Now().UTC()

	paymentMethod := draft.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = PaymentMethodCOD
	}

	address := Address{
		ReceiverName:  draft.ReceiverName,
		ReceiverPhone: draft.ReceiverPhone,
		FullAddress:   draft.ReceiverAddress,
	}
	if address.ReceiverName == "" {
		address.ReceiverName = draft.Customer.Name
	}
	if address.ReceiverPhone == "" {
		address.ReceiverPhone = draft.Customer.Phone
	}
	if address.FullAddress == "" {
		address.FullAddress = DefaultReceiverAddress
	}

	return &Order{
		ID:        uuid.New(),
		OrderCode: orderCode,
		Customer:  draft.Customer,
		Items:     items,
		Pricing:   pricing,
		Shipping: Shipping{
			Status:  ShippingStatusNotCreated,
			Address: address,
		},
		OrderStatus:   OrderStatusConfirmed,
		PaymentMethod: paymentMethod,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ShipmentInfo is what the provider reports back for a created shipment.
type ShipmentInfo struct {
	ShippingOrderCode     string
	Status                string
	OrderStatus           string
	Shipper               *Shipper
	EstimatedDeliveryTime *time.Time
}

// AttachShipment populates shipping fields from the provider response.
// Absent fields keep their defaults.
func (o *Order) AttachShipment(info ShipmentInfo) {
	if info.ShippingOrderCode != "" {
		o.Shipping.ShippingOrderCode = info.ShippingOrderCode
	}
	if info.Status != "" {
		o.Shipping.Status = ShippingStatus(info.Status)
	}
	if info.Shipper != nil {
		o.Shipping.Shipper = info.Shipper
	}
	if info.EstimatedDeliveryTime != nil {
		o.Shipping.EstimatedDeliveryTime = info.EstimatedDeliveryTime
	}
	if info.OrderStatus != "" {
		o.OrderStatus = OrderStatus(info.OrderStatus)
	}
	o.UpdatedAt = time.Now().UTC()
}

// OrderUpdate is a sparse patch: only non-nil fields are assigned. Pure
// assignment keeps repeated application idempotent.
type OrderUpdate struct {
	OrderStatus           *OrderStatus
	PaymentStatus         *string
	ShippingStatus        *ShippingStatus
	ShippingOrderCode     *string
	Shipper               *Shipper
	EstimatedDeliveryTime *time.Time
	DeliveredAt           *time.Time
	FailedReason          *string
}

// RequestsCancellation reports whether the patch moves the order to
// CANCELLED.
func (u OrderUpdate) RequestsCancellation() bool {
	return u.OrderStatus != nil && *u.OrderStatus == OrderStatusCancelled
}

func (o *Order) Apply(update OrderUpdate) {
	if update.OrderStatus != nil {
		o.OrderStatus = *update.OrderStatus
	}
	if update.PaymentStatus != nil {
		o.PaymentStatus = *update.PaymentStatus
	}
	if update.ShippingStatus != nil {
		o.Shipping.Status = *update.ShippingStatus
	}
	if update.ShippingOrderCode != nil {
		o.Shipping.ShippingOrderCode = *update.ShippingOrderCode
	}
	if update.Shipper != nil {
		o.Shipping.Shipper = update.Shipper
	}
	if update.EstimatedDeliveryTime != nil {
		o.Shipping.EstimatedDeliveryTime = update.EstimatedDeliveryTime
	}
	if update.DeliveredAt != nil {
		o.Shipping.DeliveredAt = update.DeliveredAt
	}
	if update.FailedReason != nil {
		o.Shipping.FailedReason = *update.FailedReason
	}
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) Cancel() {
	o.OrderStatus = OrderStatusCancelled
	o.UpdatedAt = time.Now().UTC()
}

// LineInput is one requested order line. Unit prices always come from the
// catalog, never from the client.
type LineInput struct {
	ProductID string
	Quantity  int
}

// OrderDraft carries the validated creation input into the workflow.
type OrderDraft struct {
	Customer        Customer
	Items           []LineInput
	ShippingFee     float64
	Discount        float64
	Currency        string
	PaymentMethod   string
	ReceiverName    string
	ReceiverPhone   string
	ReceiverAddress string
}

// Validate checks customer fields and item shape. Product existence and
// eligibility are checked against the catalog by the workflow, not here.
func (d OrderDraft) Validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(d.Customer.Name) == "" {
		fields["customer.name"] = "must not be empty"
	}
	if strings.TrimSpace(d.Customer.Phone) == "" {
		fields["customer.phone"] = "must not be empty"
	}
	if d.Customer.Email != "" {
		if _, err := mail.ParseAddress(d.Customer.Email); err != nil {
			fields["customer.email"] = "must be a valid email address"
		}
	}
	if len(d.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for i, item := range d.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			fields[itemField(i, "productId")] = "must not be empty"
		}
		if item.Quantity <= 0 {
			fields[itemField(i, "quantity")] = "must be greater than zero"
		}
	}
	if d.ShippingFee < 0 {
		fields["pricing.shippingFee"] = "must not be negative"
	}
	if d.Discount < 0 {
		fields["pricing.discount"] = "must not be negative"
	}
	if d.PaymentMethod != "" && !validPaymentMethod(d.PaymentMethod) {
		fields["paymentMethod"] = "must be one of " + strings.Join(PaymentMethods(), ", ")
	}

	if len(fields) > 0 {
		return NewValidationError("invalid order payload", fields)
	}
	return nil
}

func itemField(index int, name string) string {
	return fmt.Sprintf("items[%d].%s", index, name)
}

func validPaymentMethod(method string) bool {
	for _, m := range PaymentMethods() {
		if m == method {
			return true
		}
	}
	return false
}
