package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ergolife/storefront/internal/domain/catalog"
)

const (
	getProductByIDSQL = `SELECT id, name, description, category, material, images, thumbnails, variants
		FROM products WHERE id = $1`

	getColorByIDSQL = `SELECT id, name_en, name_th FROM colors WHERE id = $1`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
// Variants live embedded on the product row as JSONB.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID returns a single product with its embedded variants.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p          catalog.Product
		images     []byte
		thumbnails []byte
		variants   []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Material,
		&images, &thumbnails, &variants,
	)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return p, fmt.Errorf("unmarshaling product images: %w", err)
	}
	if err := json.Unmarshal(thumbnails, &p.Thumbnails); err != nil {
		return p, fmt.Errorf("unmarshaling product thumbnails: %w", err)
	}
	if err := json.Unmarshal(variants, &p.Variants); err != nil {
		return p, fmt.Errorf("unmarshaling product variants: %w", err)
	}
	return p, nil
}

var _ catalog.ColorRepository = (*ColorRepository)(nil)

// ColorRepository implements catalog.ColorRepository backed by PostgreSQL.
type ColorRepository struct {
	pool *pgxpool.Pool
}

// NewColorRepository returns a ColorRepository that uses the given pool.
func NewColorRepository(pool *pgxpool.Pool) *ColorRepository {
	return &ColorRepository{pool: pool}
}

// GetColorByID returns a single color by its identifier.
func (r *ColorRepository) GetColorByID(ctx context.Context, id string) (*catalog.Color, error) {
	rows, err := r.pool.Query(ctx, getColorByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting color %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (catalog.Color, error) {
		var c catalog.Color
		err := row.Scan(&c.ID, &c.NameEN, &c.NameTH)
		return c, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrColorNotFound
		}
		return nil, fmt.Errorf("getting color %q: %w", id, err)
	}
	return &c, nil
}
