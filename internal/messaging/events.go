package messaging

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	OrderCreatedEvent       EventType = "order.created"
	OrderCancelledEvent     EventType = "order.cancelled"
	OrderStatusUpdatedEvent EventType = "order.status.updated"
)

// OrderEvent announces an order lifecycle change to downstream consumers.
// Publishing is best-effort: the order workflow never fails because an
// event could not be sent.
type OrderEvent struct {
	ID        uuid.UUID   `json:"id"`
	OrderCode string      `json:"order_code"`
	EventType EventType   `json:"event_type"`
	Service   string      `json:"service"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}
