// Command seed-db populates colors, products, a demo user, and a couple of
// discounts for local development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ergolife/storefront/internal/domain/catalog"
	"github.com/ergolife/storefront/internal/repository"
)

type productJSON struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Material    string            `json:"material"`
	Images      []catalog.Image   `json:"images"`
	Thumbnails  []catalog.Image   `json:"thumbnails"`
	Variants    []catalog.Variant `json:"variants"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedColors(ctx, pool); err != nil {
		return errors.Wrap(err, "seed colors")
	}
	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedUsers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedDiscounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discounts")
	}

	return nil
}

const upsertColorSQL = `INSERT INTO colors (id, name_en, name_th)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET name_en = EXCLUDED.name_en, name_th = EXCLUDED.name_th`

func seedColors(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding colors")

	colors := []catalog.Color{
		{ID: "col-white", NameEN: "White", NameTH: "ขาว"},
		{ID: "col-black", NameEN: "Black", NameTH: "ดำ"},
		{ID: "col-walnut", NameEN: "Walnut", NameTH: "วอลนัท"},
		{ID: "col-oak", NameEN: "Oak", NameTH: "โอ๊ค"},
	}

	for _, c := range colors {
		if _, err := pool.Exec(ctx, upsertColorSQL, c.ID, c.NameEN, c.NameTH); err != nil {
			return errors.Wrapf(err, "upsert color %s", c.ID)
		}
		slog.Info("upserted color", slog.String("id", c.ID), slog.String("name", c.NameEN))
	}

	return nil
}

const upsertProductSQL = `INSERT INTO products (id, name, description, category, material, images, thumbnails, variants)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, description = EXCLUDED.description,
		category = EXCLUDED.category, material = EXCLUDED.material,
		images = EXCLUDED.images, thumbnails = EXCLUDED.thumbnails,
		variants = EXCLUDED.variants, updated_at = now()`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		images, err := json.Marshal(p.Images)
		if err != nil {
			return errors.Wrapf(err, "marshal images for product %s", p.ID)
		}
		thumbnails, err := json.Marshal(p.Thumbnails)
		if err != nil {
			return errors.Wrapf(err, "marshal thumbnails for product %s", p.ID)
		}
		variants, err := json.Marshal(p.Variants)
		if err != nil {
			return errors.Wrapf(err, "marshal variants for product %s", p.ID)
		}

		_, err = pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Category, p.Material,
			images, thumbnails, variants,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

const upsertUserSQL = `INSERT INTO users (id, first_name, last_name, email, phone, role)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING`

func seedUsers(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo users")

	users := []struct {
		id, first, last, email, phone, role string
	}{
		{"usr-demo", "Demo", "Customer", "demo@example.com", "0812345678", "user"},
		{"usr-admin", "Store", "Admin", "admin@example.com", "0898765432", "admin"},
	}

	for _, u := range users {
		if _, err := pool.Exec(ctx, upsertUserSQL, u.id, u.first, u.last, u.email, u.phone, u.role); err != nil {
			return errors.Wrapf(err, "upsert user %s", u.id)
		}
		slog.Info("upserted user", slog.String("id", u.id), slog.String("email", u.email))
	}

	return nil
}

const upsertDiscountSQL = `INSERT INTO user_discounts (id, user_id, code, description, type, value,
	max_discount, min_order_amount, usage_limit, used_count, start_date, end_date, is_global)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12)
	ON CONFLICT (code, COALESCE(user_id, '')) DO NOTHING`

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding discounts")

	start := time.Now().UTC()
	end := start.AddDate(1, 0, 0)
	maxDiscount := decimal.NewFromInt(500)
	minOrder := decimal.NewFromInt(2000)
	demoUser := "usr-demo"

	discounts := []struct {
		id, code, description, dtype string
		userID                       *string
		value                        decimal.Decimal
		maxDiscount                  *decimal.Decimal
		minOrder                     *decimal.Decimal
		usageLimit                   int
		isGlobal                     bool
	}{
		{
			id: "disc-save10", code: "SAVE10", description: "10% off, up to 500",
			dtype: "percentage", value: decimal.NewFromInt(10),
			maxDiscount: &maxDiscount, usageLimit: 1000, isGlobal: true,
		},
		{
			id: "disc-big200", code: "BIG200", description: "200 off orders over 2000",
			dtype: "fixed", value: decimal.NewFromInt(200),
			minOrder: &minOrder, usageLimit: 500, isGlobal: true,
		},
		{
			id: "disc-welcome", code: "WELCOME", description: "Personal welcome discount",
			dtype: "fixed", value: decimal.NewFromInt(100),
			userID: &demoUser, usageLimit: 1,
		},
	}

	for _, d := range discounts {
		_, err := pool.Exec(ctx, upsertDiscountSQL,
			d.id, d.userID, d.code, d.description, d.dtype, d.value,
			d.maxDiscount, d.minOrder, d.usageLimit, start, end, d.isGlobal,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.code)
		}
		slog.Info("upserted discount", slog.String("code", d.code))
	}

	return nil
}
