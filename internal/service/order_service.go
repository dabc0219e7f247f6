package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/orderdesk/order-service/internal/domain"
	"github.com/orderdesk/order-service/internal/gateway"
	"github.com/orderdesk/order-service/internal/messaging"
)

const serviceName = "order-service"

// OrderRepository is the storage contract for order aggregates. Reads are
// joined: an order always comes back with its items in one round trip.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByCode(ctx context.Context, orderCode string) (*domain.Order, error)
	List(ctx context.Context, skip, limit int) ([]*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}

type ProductReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// ShipmentGateway is the external provider boundary. Calls classify their
// outcome instead of returning errors.
type ShipmentGateway interface {
	CreateShipment(ctx context.Context, order *domain.Order) gateway.Result
	CancelShipment(ctx context.Context, orderCode string, status domain.OrderStatus) gateway.Result
}

type EventPublisher interface {
	PublishOrderEvent(event messaging.OrderEvent) error
}

// OrderService owns the order workflow: creation with the shipment call as
// the persistence gate, the status-transition rules, and the external
// status projection.
type OrderService struct {
	orders      OrderRepository
	products    ProductReader
	gateway     ShipmentGateway
	events      EventPublisher
	log         *logrus.Logger
	codeRetries int
}

func NewOrderService(
	orders OrderRepository,
	products ProductReader,
	shipmentGateway ShipmentGateway,
	events EventPublisher,
	log *logrus.Logger,
	codeRetries int,
) *OrderService {
	if codeRetries <= 0 {
		codeRetries = 5
	}
	return &OrderService{
		orders:      orders,
		products:    products,
		gateway:     shipmentGateway,
		events:      events,
		log:         log,
		codeRetries: codeRetries,
	}
}

// CreateOrder runs the creation workflow. Nothing is written to storage
// unless the shipment gateway call succeeds; any earlier exit leaves zero
// trace.
func (s *OrderService) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	// All catalog lookups happen before any persistence attempt. Prices
	// and names are read fresh from the catalog on every request.
	lines := make([]domain.PricedLine, 0, len(draft.Items))
	for _, item := range draft.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "product lookup", Err: err}
		}
		if product == nil {
			return nil, &domain.NotFoundError{Resource: "product", ID: item.ProductID}
		}
		if !product.Sellable() {
			return nil, domain.NewValidationError(
				"product "+item.ProductID+" is not active",
				map[string]string{"items": "product " + item.ProductID + " is not active"},
			)
		}
		lines = append(lines, domain.PricedLine{Product: *product, Quantity: item.Quantity})
	}

	pricing, items := domain.CalculatePricing(lines, draft.ShippingFee, draft.Discount, draft.Currency)
	orderCode, err := s.reserveOrderCode(ctx)
	if err != nil {
		return nil, err
	}
	order := domain.NewOrder(orderCode, draft, items, pricing)

	// The gateway call is the gate: the aggregate exists only in memory
	// until the provider confirms. No storage locks are held here.
	result := s.gateway.CreateShipment(ctx, order)
	if !result.Succeeded() {
		s.log.WithFields(logrus.Fields{
			"order_code": order.OrderCode,
			"outcome":    result.Outcome,
		}).Warn("order not created: shipment gateway call failed")
		return nil, &domain.GatewayError{Op: "create shipment", Reason: result.Reason()}
	}

	order.AttachShipment(result.Shipment)

	if err := s.persistNewOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publish(messaging.OrderCreatedEvent, order)

	s.log.WithFields(logrus.Fields{
		"order_code":   order.OrderCode,
		"total_amount": order.Pricing.TotalAmount,
		"items":        len(order.Items),
	}).Info("order created")

	return order, nil
}

// reserveOrderCode generates a code no stored order currently uses, before
// the shipment call fixes the code at the provider. The unique constraint
// stays the real guarantee; the insert-time retry in persistNewOrder is the
// backstop for a code taken between this check and the insert.
func (s *OrderService) reserveOrderCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.codeRetries; attempt++ {
		code := domain.GenerateOrderCode(time.Now())
		existing, err := s.orders.GetByCode(ctx, code)
		if err != nil {
			return "", &domain.PersistenceError{Op: "check order code", Err: err}
		}
		if existing == nil {
			return code, nil
		}
		s.log.Warnf("order code %s already taken, regenerating (attempt %d/%d)",
			code, attempt, s.codeRetries)
	}
	s.log.Errorf("order code generation exhausted after %d attempts", s.codeRetries)
	return "", domain.ErrOrderCodeExhausted
}

// persistNewOrder commits the aggregate, regenerating the order code on a
// unique-constraint collision up to the configured bound. The shipment
// already exists at this point: a storage failure here leaves the provider
// ahead of local state, which is logged as a reconciliation risk and not
// compensated. A regenerated code on this path also no longer matches the
// code the provider stored at shipment creation; the pre-check in
// reserveOrderCode keeps this window to the race between check and insert.
func (s *OrderService) persistNewOrder(ctx context.Context, order *domain.Order) error {
	for attempt := 1; ; attempt++ {
		err := s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrOrderCodeConflict) {
			if attempt >= s.codeRetries {
				s.log.Errorf("order code generation exhausted after %d attempts", attempt)
				return domain.ErrOrderCodeExhausted
			}
			order.OrderCode = domain.GenerateOrderCode(time.Now())
			s.log.Warnf("order code collision after shipment creation, retrying with %s; provider keeps the original code (attempt %d/%d)",
				order.OrderCode, attempt+1, s.codeRetries)
			continue
		}
		s.log.WithFields(logrus.Fields{
			"order_code":          order.OrderCode,
			"shipping_order_code": order.Shipping.ShippingOrderCode,
		}).Errorf("RECONCILIATION RISK: shipment created but order not persisted: %v", err)
		return &domain.PersistenceError{Op: "create order", Err: err}
	}
}

// UpdateOrder applies a partial update located by business code. The
// CONFIRMED -> CANCELLED transition cancels the shipment at the provider
// first and leaves local state untouched when that call fails; every other
// transition is a pure local field update.
func (s *OrderService) UpdateOrder(ctx context.Context, orderCode string, update domain.OrderUpdate) (*domain.Order, error) {
	order, err := s.orders.GetByCode(ctx, orderCode)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return nil, &domain.NotFoundError{Resource: "order", ID: orderCode}
	}

	cancelling := update.RequestsCancellation() && order.OrderStatus == domain.OrderStatusConfirmed
	if cancelling {
		result := s.gateway.CancelShipment(ctx, order.OrderCode, domain.OrderStatusCancelled)
		if !result.Succeeded() {
			s.log.WithFields(logrus.Fields{
				"order_code": order.OrderCode,
				"outcome":    result.Outcome,
			}).Warn("order not cancelled: shipment gateway call failed")
			return nil, &domain.GatewayError{Op: "cancel shipment", Reason: result.Reason()}
		}
	}

	order.Apply(update)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, wrapUpdateError(err)
	}

	if cancelling {
		s.publish(messaging.OrderCancelledEvent, order)
	} else {
		s.publish(messaging.OrderStatusUpdatedEvent, order)
	}

	return order, nil
}

// ApplyExternalUpdate is the projection path used by the shipment provider
// (or an operator) to report state changes that already happened
// externally. It never calls the gateway and is idempotent: reapplying the
// same payload yields the same state.
func (s *OrderService) ApplyExternalUpdate(ctx context.Context, orderCode string, update domain.OrderUpdate) (*domain.Order, error) {
	order, err := s.orders.GetByCode(ctx, orderCode)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return nil, &domain.NotFoundError{Resource: "order", ID: orderCode}
	}

	order.Apply(update)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, wrapUpdateError(err)
	}

	s.publish(messaging.OrderStatusUpdatedEvent, order)

	s.log.WithField("order_code", orderCode).Info("external status update applied")
	return order, nil
}

// CancelOrder is the soft delete: the row stays, orderStatus flips to
// CANCELLED locally. The provider is not involved on this path.
func (s *OrderService) CancelOrder(ctx context.Context, orderCode string) (*domain.Order, error) {
	order, err := s.orders.GetByCode(ctx, orderCode)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return nil, &domain.NotFoundError{Resource: "order", ID: orderCode}
	}
	if order.OrderStatus == domain.OrderStatusCancelled {
		return nil, domain.NewValidationError("order is already cancelled", nil)
	}

	order.Cancel()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, wrapUpdateError(err)
	}

	s.publish(messaging.OrderCancelledEvent, order)
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return nil, &domain.NotFoundError{Resource: "order", ID: id.String()}
	}
	return order, nil
}

func (s *OrderService) GetOrderByCode(ctx context.Context, orderCode string) (*domain.Order, error) {
	order, err := s.orders.GetByCode(ctx, orderCode)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return nil, &domain.NotFoundError{Resource: "order", ID: orderCode}
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx, skip, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// publish is best-effort; a broker problem never fails the request.
func (s *OrderService) publish(eventType messaging.EventType, order *domain.Order) {
	if s.events == nil {
		return
	}
	event := messaging.OrderEvent{
		ID:        uuid.New(),
		OrderCode: order.OrderCode,
		EventType: eventType,
		Service:   serviceName,
		Payload: map[string]interface{}{
			"order_status":    order.OrderStatus,
			"shipping_status": order.Shipping.Status,
			"total_amount":    order.Pricing.TotalAmount,
		},
	}
	if err := s.events.PublishOrderEvent(event); err != nil {
		s.log.Warnf("failed to publish %s event for order %s: %v", eventType, order.OrderCode, err)
	}
}

func wrapUpdateError(err error) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	return &domain.PersistenceError{Op: "update order", Err: err}
}
