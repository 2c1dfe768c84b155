package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ergolife/storefront/internal/domain/discount"
)

const (
	discountColumns = `id, user_id, code, description, type, value, max_discount,
		min_order_amount, usage_limit, used_count, start_date, end_date, is_global, created_at`

	findDiscountByCodeSQL = `SELECT ` + discountColumns + ` FROM user_discounts
		WHERE code = $2 AND (user_id = $1 OR (user_id IS NULL AND is_global))
		ORDER BY user_id NULLS LAST LIMIT 1`

	listDiscountsForUserSQL = `SELECT ` + discountColumns + ` FROM user_discounts
		WHERE user_id = $1 OR (user_id IS NULL AND is_global)
		ORDER BY created_at DESC`

	createDiscountSQL = `INSERT INTO user_discounts (id, user_id, code, description, type, value,
		max_discount, min_order_amount, usage_limit, used_count, start_date, end_date, is_global)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	incrementDiscountUsageSQL = `UPDATE user_discounts
		SET used_count = used_count + 1
		WHERE id = $1 AND used_count < usage_limit`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode matches a code against the user's own discounts first, then
// global ones (is_global with no user scope). Codes are stored normalized,
// so the lookup is an exact match.
func (r *DiscountRepository) FindByCode(ctx context.Context, userID, code string) (*discount.UserDiscount, error) {
	rows, err := r.pool.Query(ctx, findDiscountByCodeSQL, userID, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}
	return &d, nil
}

// ListForUser returns the user's own discounts plus global ones, newest first.
func (r *DiscountRepository) ListForUser(ctx context.Context, userID string) ([]discount.UserDiscount, error) {
	rows, err := r.pool.Query(ctx, listDiscountsForUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing discounts for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanDiscount)
}

// Create inserts a new discount. A (code, user scope) conflict maps to
// discount.ErrDuplicateCode.
func (r *DiscountRepository) Create(ctx context.Context, d *discount.UserDiscount) error {
	_, err := r.pool.Exec(ctx, createDiscountSQL,
		d.ID, d.UserID, d.Code, d.Description, string(d.Type), d.Value,
		d.MaxDiscount, d.MinOrderAmount, d.UsageLimit, d.UsedCount,
		d.StartDate, d.EndDate, d.IsGlobal,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return discount.ErrDuplicateCode
		}
		return fmt.Errorf("creating discount %q: %w", d.Code, err)
	}
	return nil
}

// IncrementUsage bumps used_count while it is still under the usage limit.
// The WHERE clause makes the check and the increment one atomic statement;
// a concurrent redeemer of the last use sees zero rows affected.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, incrementDiscountUsageSQL, id)
	if err != nil {
		return false, fmt.Errorf("incrementing usage for discount %q: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanDiscount(row pgx.CollectableRow) (discount.UserDiscount, error) {
	var (
		d        discount.UserDiscount
		dtype    string
		value    decimal.Decimal
		maxDisc  *decimal.Decimal
		minOrder *decimal.Decimal
		limit    int32
		used     int32
		start    time.Time
		end      time.Time
	)
	err := row.Scan(
		&d.ID, &d.UserID, &d.Code, &d.Description, &dtype, &value,
		&maxDisc, &minOrder, &limit, &used, &start, &end, &d.IsGlobal, &d.CreatedAt,
	)
	if err != nil {
		return d, err
	}
	d.Type = discount.Type(dtype)
	d.Value = value
	d.MaxDiscount = maxDisc
	d.MinOrderAmount = minOrder
	d.UsageLimit = int(limit)
	d.UsedCount = int(used)
	d.StartDate = start
	d.EndDate = end
	return d, nil
}
