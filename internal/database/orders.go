package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, room_id, table_id, status, payment_method,
	discount_type, discount_value, discount_reason,
	subtotal, tax_amount, total_amount,
	deleted_at, deleted_by, delete_reason, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.RoomID, &o.TableID, &o.Status, &o.PaymentMethod,
		&o.DiscountType, &o.DiscountValue, &o.DiscountReason,
		&o.Subtotal, &o.TaxAmount, &o.TotalAmount,
		&o.DeletedAt, &o.DeletedBy, &o.DeleteReason, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func collectOrders(q *Queries, ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const createOrder = `
INSERT INTO orders (
	user_id, room_id, table_id, payment_method,
	discount_type, discount_value, discount_reason,
	subtotal, tax_amount, total_amount
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	UserID         pgtype.UUID
	RoomID         uuid.UUID
	TableID        uuid.UUID
	PaymentMethod  string
	DiscountType   pgtype.Text
	DiscountValue  pgtype.Numeric
	DiscountReason pgtype.Text
	Subtotal       pgtype.Numeric
	TaxAmount      pgtype.Numeric
	TotalAmount    pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.UserID, arg.RoomID, arg.TableID, arg.PaymentMethod,
		arg.DiscountType, arg.DiscountValue, arg.DiscountReason,
		arg.Subtotal, arg.TaxAmount, arg.TotalAmount,
	)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, product_id, quantity, unit_price
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.ProductID, arg.Quantity, arg.UnitPrice)
	var oi OrderItem
	err := row.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.Quantity, &oi.UnitPrice)
	return oi, err
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND status <> 'DELETED'
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE status <> 'DELETED'
  AND ($1::text IS NULL OR status = $1)
  AND ($2::uuid IS NULL OR table_id = $2)
ORDER BY created_at DESC
`

type ListOrdersParams struct {
	Status  pgtype.Text
	TableID pgtype.UUID
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	return collectOrders(q, ctx, listOrders, arg.Status, arg.TableID)
}

const listOrdersByUser = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1 AND status <> 'DELETED'
ORDER BY created_at DESC
`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return collectOrders(q, ctx, listOrdersByUser, userID)
}

const listDeletedOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = 'DELETED'
ORDER BY deleted_at DESC
`

func (q *Queries) ListDeletedOrders(ctx context.Context) ([]Order, error) {
	return collectOrders(q, ctx, listDeletedOrders)
}

const listOrderItemsByOrder = `
SELECT id, order_id, product_id, quantity, unit_price
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var oi OrderItem
		if err := rows.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.Quantity, &oi.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, oi)
	}
	return items, rows.Err()
}

const deleteOrderItemsByOrder = `
DELETE FROM order_items WHERE order_id = $1
`

func (q *Queries) DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderItemsByOrder, orderID)
	return err
}

const updateOrderForEdit = `
UPDATE orders
SET payment_method = $2,
    discount_type = $3, discount_value = $4, discount_reason = $5,
    subtotal = $6, tax_amount = $7, total_amount = $8,
    updated_at = now()
WHERE id = $1 AND status IN ('PENDING', 'IN_PROGRESS')
RETURNING ` + orderColumns

type UpdateOrderForEditParams struct {
	ID             uuid.UUID
	PaymentMethod  string
	DiscountType   pgtype.Text
	DiscountValue  pgtype.Numeric
	DiscountReason pgtype.Text
	Subtotal       pgtype.Numeric
	TaxAmount      pgtype.Numeric
	TotalAmount    pgtype.Numeric
}

func (q *Queries) UpdateOrderForEdit(ctx context.Context, arg UpdateOrderForEditParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderForEdit,
		arg.ID, arg.PaymentMethod,
		arg.DiscountType, arg.DiscountValue, arg.DiscountReason,
		arg.Subtotal, arg.TaxAmount, arg.TotalAmount,
	)
	return scanOrder(row)
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	PrevStatus string
}

// UpdateOrderStatus is guarded on the status the caller read, so a
// concurrent transition surfaces as pgx.ErrNoRows instead of a lost update.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.PrevStatus)
	return scanOrder(row)
}

const softDeleteOrder = `
UPDATE orders
SET status = 'DELETED', deleted_at = now(), deleted_by = $2, delete_reason = $3, updated_at = now()
WHERE id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED', 'DELETED')
RETURNING ` + orderColumns

type SoftDeleteOrderParams struct {
	ID           uuid.UUID
	DeletedBy    pgtype.UUID
	DeleteReason pgtype.Text
}

// SoftDeleteOrder refuses terminal orders in the WHERE clause; pgx.ErrNoRows
// means the order was already settled, cancelled, or deleted.
func (q *Queries) SoftDeleteOrder(ctx context.Context, arg SoftDeleteOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, softDeleteOrder, arg.ID, arg.DeletedBy, arg.DeleteReason)
	return scanOrder(row)
}
