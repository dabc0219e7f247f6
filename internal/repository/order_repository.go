package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/orderdesk/order-service/internal/domain"
)

// OrderRepository persists order aggregates. Orders and their items are
// written in a single transaction and always read back joined; the service
// layer never loads items one by one.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	o.id, o.order_code, o.customer_id, o.customer_name, o.customer_phone, o.customer_email,
	o.subtotal, o.shipping_fee, o.discount, o.total_amount, o.currency,
	o.payment_method, o.payment_status,
	o.shipping_order_code, o.shipping_status,
	o.receiver_name, o.receiver_phone, o.receiver_address,
	o.shipper, o.estimated_delivery_time, o.delivered_at, o.failed_reason,
	o.order_status, o.created_at, o.updated_at`

// Create inserts the order and all its items atomically. A collision on the
// order-code unique constraint rolls the transaction back and returns
// domain.ErrOrderCodeConflict so the workflow can regenerate and retry.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	shipperJSON, err := marshalShipper(order.Shipping.Shipper)
	if err != nil {
		return errors.Wrap(err, "serialize shipper")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_code, customer_id, customer_name, customer_phone, customer_email,
			subtotal, shipping_fee, discount, total_amount, currency,
			payment_method, payment_status,
			shipping_order_code, shipping_status,
			receiver_name, receiver_phone, receiver_address,
			shipper, estimated_delivery_time, delivered_at, failed_reason,
			order_status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13,
			$14, $15,
			$16, $17, $18,
			$19, $20, $21, $22,
			$23, $24, $25
		)`,
		order.ID,
		order.OrderCode,
		order.Customer.ID,
		order.Customer.Name,
		order.Customer.Phone,
		nullString(order.Customer.Email),
		order.Pricing.Subtotal,
		order.Pricing.ShippingFee,
		order.Pricing.Discount,
		order.Pricing.TotalAmount,
		order.Pricing.Currency,
		nullString(order.PaymentMethod),
		order.PaymentStatus,
		nullString(order.Shipping.ShippingOrderCode),
		order.Shipping.Status,
		order.Shipping.Address.ReceiverName,
		order.Shipping.Address.ReceiverPhone,
		order.Shipping.Address.FullAddress,
		shipperJSON,
		nullTime(order.Shipping.EstimatedDeliveryTime),
		nullTime(order.Shipping.DeliveredAt),
		nullString(order.Shipping.FailedReason),
		order.OrderStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_order_code") {
			return domain.ErrOrderCodeConflict
		}
		return errors.Wrap(err, "insert order")
	}

	for i := range order.Items {
		item := &order.Items[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice,
		).Scan(&item.ID)
		if err != nil {
			return errors.Wrap(err, "insert order item")
		}
	}

	return errors.Wrap(tx.Commit(), "commit order")
}

// GetByCode fetches one order with its items in a single joined read.
// Returns (nil, nil) when the code resolves to nothing.
func (r *OrderRepository) GetByCode(ctx context.Context, orderCode string) (*domain.Order, error) {
	return r.getOne(ctx, "o.order_code = $1", orderCode)
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getOne(ctx, "o.id = $1", id)
}

func (r *OrderRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`,
			i.id, i.product_id, i.product_name, i.quantity, i.unit_price, i.total_price
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE `+where+`
		ORDER BY i.id`, arg)
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	defer rows.Close()

	var order *domain.Order
	for rows.Next() {
		o, item, err := scanJoinedRow(rows)
		if err != nil {
			return nil, err
		}
		if order == nil {
			order = o
		}
		if item != nil {
			order.Items = append(order.Items, *item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate order rows")
	}
	return order, nil
}

// List returns a page of orders, most recently updated first, with their
// items loaded in one extra query instead of one per order.
func (r *OrderRepository) List(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		ORDER BY o.updated_at DESC
		OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var orders []*domain.Order
	byID := make(map[uuid.UUID]*domain.Order)
	var ids []string

	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
		ids = append(ids, o.ID.String())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate order rows")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, id, product_id, product_name, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID uuid.UUID
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate order item rows")
	}

	return orders, nil
}

// Update rewrites the mutable fields of an existing order. Customer and
// item snapshots are immutable after creation and are not touched.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	shipperJSON, err := marshalShipper(order.Shipping.Shipper)
	if err != nil {
		return errors.Wrap(err, "serialize shipper")
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			order_status = $2,
			payment_status = $3,
			shipping_order_code = $4,
			shipping_status = $5,
			shipper = $6,
			estimated_delivery_time = $7,
			delivered_at = $8,
			failed_reason = $9,
			updated_at = $10
		WHERE id = $1`,
		order.ID,
		order.OrderStatus,
		order.PaymentStatus,
		nullString(order.Shipping.ShippingOrderCode),
		order.Shipping.Status,
		shipperJSON,
		nullTime(order.Shipping.EstimatedDeliveryTime),
		nullTime(order.Shipping.DeliveredAt),
		nullString(order.Shipping.FailedReason),
		order.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "update order")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update order rows affected")
	}
	if affected == 0 {
		return &domain.NotFoundError{Resource: "order", ID: order.OrderCode}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrderRow(rows rowScanner) (*domain.Order, error) {
	var (
		o             domain.Order
		email         sql.NullString
		paymentMethod sql.NullString
		shippingCode  sql.NullString
		shipperJSON   []byte
		estimated     sql.NullTime
		delivered     sql.NullTime
		failedReason  sql.NullString
	)

	err := rows.Scan(
		&o.ID, &o.OrderCode, &o.Customer.ID, &o.Customer.Name, &o.Customer.Phone, &email,
		&o.Pricing.Subtotal, &o.Pricing.ShippingFee, &o.Pricing.Discount, &o.Pricing.TotalAmount, &o.Pricing.Currency,
		&paymentMethod, &o.PaymentStatus,
		&shippingCode, &o.Shipping.Status,
		&o.Shipping.Address.ReceiverName, &o.Shipping.Address.ReceiverPhone, &o.Shipping.Address.FullAddress,
		&shipperJSON, &estimated, &delivered, &failedReason,
		&o.OrderStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "scan order")
	}

	o.Customer.Email = email.String
	o.PaymentMethod = paymentMethod.String
	o.Shipping.ShippingOrderCode = shippingCode.String
	o.Shipping.FailedReason = failedReason.String
	if estimated.Valid {
		t := estimated.Time
		o.Shipping.EstimatedDeliveryTime = &t
	}
	if delivered.Valid {
		t := delivered.Time
		o.Shipping.DeliveredAt = &t
	}
	if len(shipperJSON) > 0 {
		var shipper domain.Shipper
		if err := json.Unmarshal(shipperJSON, &shipper); err != nil {
			return nil, errors.Wrap(err, "deserialize shipper")
		}
		o.Shipping.Shipper = &shipper
	}

	return &o, nil
}

func scanJoinedRow(rows rowScanner) (*domain.Order, *domain.OrderItem, error) {
	var (
		o             domain.Order
		email         sql.NullString
		paymentMethod sql.NullString
		shippingCode  sql.NullString
		shipperJSON   []byte
		estimated     sql.NullTime
		delivered     sql.NullTime
		failedReason  sql.NullString

		itemID      sql.NullInt64
		productID   sql.NullString
		productName sql.NullString
		quantity    sql.NullInt64
		unitPrice   sql.NullFloat64
		totalPrice  sql.NullFloat64
	)

	err := rows.Scan(
		&o.ID, &o.OrderCode, &o.Customer.ID, &o.Customer.Name, &o.Customer.Phone, &email,
		&o.Pricing.Subtotal, &o.Pricing.ShippingFee, &o.Pricing.Discount, &o.Pricing.TotalAmount, &o.Pricing.Currency,
		&paymentMethod, &o.PaymentStatus,
		&shippingCode, &o.Shipping.Status,
		&o.Shipping.Address.ReceiverName, &o.Shipping.Address.ReceiverPhone, &o.Shipping.Address.FullAddress,
		&shipperJSON, &estimated, &delivered, &failedReason,
		&o.OrderStatus, &o.CreatedAt, &o.UpdatedAt,
		&itemID, &productID, &productName, &quantity, &unitPrice, &totalPrice,
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "scan joined order row")
	}

	o.Customer.Email = email.String
	o.PaymentMethod = paymentMethod.String
	o.Shipping.ShippingOrderCode = shippingCode.String
	o.Shipping.FailedReason = failedReason.String
	if estimated.Valid {
		t := estimated.Time
		o.Shipping.EstimatedDeliveryTime = &t
	}
	if delivered.Valid {
		t := delivered.Time
		o.Shipping.DeliveredAt = &t
	}
	if len(shipperJSON) > 0 {
		var shipper domain.Shipper
		if err := json.Unmarshal(shipperJSON, &shipper); err != nil {
			return nil, nil, errors.Wrap(err, "deserialize shipper")
		}
		o.Shipping.Shipper = &shipper
	}

	if !itemID.Valid {
		return &o, nil, nil
	}
	return &o, &domain.OrderItem{
		ID:          itemID.Int64,
		ProductID:   productID.String,
		ProductName: productName.String,
		Quantity:    int(quantity.Int64),
		UnitPrice:   unitPrice.Float64,
		TotalPrice:  totalPrice.Float64,
	}, nil
}

func marshalShipper(shipper *domain.Shipper) ([]byte, error) {
	if shipper == nil {
		return nil, nil
	}
	return json.Marshal(shipper)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && (constraint == "" || pqErr.Constraint == constraint)
}
