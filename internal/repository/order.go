package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ergolife/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, user_id, order_number, name, phone, order_status,
		subtotal_amount, discount_amount, discount_code, installation_fee, items, shipping)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	orderColumns = `id, user_id, order_number, name, phone, order_status,
		subtotal_amount, discount_amount, discount_code, installation_fee,
		items, shipping, created_at, updated_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE id = $1 AND user_id = $2`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	latestOrderSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 AND ($2 = '' OR order_status = $2)
		ORDER BY created_at DESC LIMIT 1`

	updateOrderShippingSQL = `UPDATE orders
		SET order_status = $3, shipping = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items and the shipping sub-record are serialized to JSONB columns.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The unique index on order_number turns a
// generator collision into order.ErrDuplicateOrderNumber.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("marshaling order shipping: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.OrderNumber, o.Name, o.Phone, string(o.Status),
		o.Subtotal, o.DiscountAmount, o.DiscountCode, o.InstallationFee,
		itemsJSON, shippingJSON,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns one order scoped to its owner.
func (r *OrderRepository) GetByID(ctx context.Context, userID, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Latest returns the user's most recent order, optionally filtered by status.
func (r *OrderRepository) Latest(ctx context.Context, userID string, status order.Status) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, latestOrderSQL, userID, string(status))
	if err != nil {
		return nil, fmt.Errorf("getting latest order for user %q: %w", userID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting latest order for user %q: %w", userID, err)
	}
	return &o, nil
}

// UpdateShipping persists the shipping sub-record and the derived status.
func (r *OrderRepository) UpdateShipping(ctx context.Context, o *order.Order) error {
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("marshaling order shipping: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateOrderShippingSQL,
		o.ID, o.UserID, string(o.Status), shippingJSON,
	)
	if err != nil {
		return fmt.Errorf("updating shipping for order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		status   string
		subtotal decimal.Decimal
		disc     decimal.Decimal
		fee      decimal.Decimal
		items    []byte
		shipping []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.Name, &o.Phone, &status,
		&subtotal, &disc, &o.DiscountCode, &fee,
		&items, &shipping, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	o.Subtotal = subtotal
	o.DiscountAmount = disc
	o.InstallationFee = fee
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return o, fmt.Errorf("unmarshaling order shipping: %w", err)
	}
	return o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
