package gateway

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/orderdesk/order-service/internal/domain"
)

// Nominal per-item weight and the minimum billable package weight, in kg.
// The floor is a provider business rule, not a bug.
const (
	itemWeightKg    = 0.5
	minimumWeightKg = 1.0
)

type shipmentItem struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	ProductSKU  string  `json:"productSku"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type shipmentRequest struct {
	OrderCode string `json:"orderCode"`

	SenderName     string `json:"senderName"`
	SenderPhone    string `json:"senderPhone"`
	SenderAddress  string `json:"senderAddress"`
	SenderCity     string `json:"senderCity"`
	SenderDistrict string `json:"senderDistrict"`
	SenderWard     string `json:"senderWard"`

	ReceiverName     string `json:"receiverName"`
	ReceiverPhone    string `json:"receiverPhone"`
	ReceiverAddress  string `json:"receiverAddress"`
	ReceiverCity     string `json:"receiverCity"`
	ReceiverDistrict string `json:"receiverDistrict"`
	ReceiverWard     string `json:"receiverWard"`

	PackageWeight      float64 `json:"packageWeight"`
	PackageLength      float64 `json:"packageLength"`
	PackageWidth       float64 `json:"packageWidth"`
	PackageHeight      float64 `json:"packageHeight"`
	PackageValue       float64 `json:"packageValue"`
	PackageDescription string  `json:"packageDescription"`

	ShippingFee float64 `json:"shippingFee"`
	CODAmount   float64 `json:"codAmount"`

	EstimatedPickupTime   *string `json:"estimatedPickupTime"`
	EstimatedDeliveryTime *string `json:"estimatedDeliveryTime"`
	ActualPickupTime      *string `json:"actualPickupTime"`
	ActualDeliveryTime    *string `json:"actualDeliveryTime"`

	CarrierCode string         `json:"carrierCode"`
	ServiceType string         `json:"serviceType"`
	CreatedBy   string         `json:"createdBy"`
	Items       []shipmentItem `json:"items"`
}

// buildShipmentRequest translates an in-progress order into the provider's
// expected payload. Receiver fields fall back to customer info and the
// sender block mirrors the receiver address (customer is both sender and
// receiver in this flow).
func buildShipmentRequest(order *domain.Order) shipmentRequest {
	receiverName := order.Shipping.Address.ReceiverName
	if receiverName == "" {
		receiverName = order.Customer.Name
	}
	receiverPhone := order.Shipping.Address.ReceiverPhone
	if receiverPhone == "" {
		receiverPhone = order.Customer.Phone
	}
	receiverAddress := order.Shipping.Address.FullAddress
	if receiverAddress == "" {
		receiverAddress = domain.DefaultReceiverAddress
	}
	receiverCity, receiverDistrict := ParseAddress(receiverAddress)

	senderAddress := receiverAddress
	senderCity, senderDistrict := ParseAddress(senderAddress)

	var totalWeight float64
	descriptions := make([]string, 0, len(order.Items))
	items := make([]shipmentItem, 0, len(order.Items))
	for _, item := range order.Items {
		totalWeight += float64(item.Quantity) * itemWeightKg
		descriptions = append(descriptions, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
		items = append(items, shipmentItem{
			ProductID:   numericProductID(item.ProductID),
			ProductName: item.ProductName,
			ProductSKU:  item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	if totalWeight < minimumWeightKg {
		totalWeight = minimumWeightKg
	}

	codAmount := 0.0
	if order.PaymentMethod == domain.PaymentMethodCOD {
		codAmount = order.Pricing.TotalAmount
	}

	return shipmentRequest{
		OrderCode: order.OrderCode,

		SenderName:     order.Customer.Name,
		SenderPhone:    order.Customer.Phone,
		SenderAddress:  senderAddress,
		SenderCity:     senderCity,
		SenderDistrict: senderDistrict,

		ReceiverName:     receiverName,
		ReceiverPhone:    receiverPhone,
		ReceiverAddress:  receiverAddress,
		ReceiverCity:     receiverCity,
		ReceiverDistrict: receiverDistrict,

		PackageWeight:      totalWeight,
		PackageLength:      10.0,
		PackageWidth:       10.0,
		PackageHeight:      10.0,
		PackageValue:       order.Pricing.Subtotal,
		PackageDescription: strings.Join(descriptions, ", "),

		ShippingFee: order.Pricing.ShippingFee,
		CODAmount:   codAmount,

		EstimatedDeliveryTime: isoTime(order.Shipping.EstimatedDeliveryTime),
		ActualDeliveryTime:    isoTime(order.Shipping.DeliveredAt),

		ServiceType: "STANDARD",
		CreatedBy:   order.Customer.ID,
		Items:       items,
	}
}

// The provider wants a numeric product id; non-numeric ids go out as 0 and
// the real id travels in productSku.
func numericProductID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}

func isoTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
