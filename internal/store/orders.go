package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, branch_id, customer_name, notes, delivery_method, address, payment_method, total_price, status, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.BranchID, &o.CustomerName, &o.Notes, &o.DeliveryMethod,
		&o.Address, &o.PaymentMethod, &o.TotalPrice, &o.Status, &o.CreatedAt)
	return o, err
}

type CreateOrderParams struct {
	BranchID       uuid.UUID
	CustomerName   string
	Notes          pgtype.Text
	DeliveryMethod string
	Address        pgtype.Text
	PaymentMethod  string
	TotalPrice     pgtype.Numeric
	Status         string
}

// CreateOrder inserts an order row and returns it.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		INSERT INTO orders (branch_id, customer_name, notes, delivery_method, address, payment_method, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+orderColumns,
		arg.BranchID, arg.CustomerName, arg.Notes, arg.DeliveryMethod,
		arg.Address, arg.PaymentMethod, arg.TotalPrice, arg.Status))
}

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
}

// CreateOrderItem inserts an immutable order line and returns it.
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var item OrderItem
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, order_id, product_id, quantity, unit_price`,
		arg.OrderID, arg.ProductID, arg.Quantity, arg.UnitPrice,
	).Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice)
	return item, err
}

// DeleteOrder removes an order; order_items cascade-delete with it.
// Used as the compensating action when item inserts fail mid-checkout.
func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

// GetOrder returns an order by ID.
func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

type ListOrdersParams struct {
	BranchID pgtype.UUID
	Status   pgtype.Text
}

// ListOrders returns orders newest-first, optionally filtered by branch and status.
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1::uuid IS NULL OR branch_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC`,
		arg.BranchID, arg.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrderItemsByOrder returns the lines of an order in insertion order.
func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID             uuid.UUID
	Status         string
	ExpectedStatus string
}

// UpdateOrderStatus transitions an order conditionally: the row must still
// hold ExpectedStatus. Zero rows updated surfaces as pgx.ErrNoRows, which
// callers treat as a concurrent-update conflict.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING `+orderColumns,
		arg.ID, arg.Status, arg.ExpectedStatus))
}
