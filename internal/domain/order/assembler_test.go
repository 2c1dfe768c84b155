package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ergolife/storefront/internal/domain/cart"
	"github.com/ergolife/storefront/internal/domain/catalog"
)

// --- Mock implementations ---

type mockCartRepo struct {
	carts    map[string]*cart.Cart
	getErr   error
	cleared  []string
	clearErr error
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*cart.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return c, nil
}

func (m *mockCartRepo) Save(_ context.Context, _ *cart.Cart) error { return nil }

func (m *mockCartRepo) Clear(_ context.Context, userID string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, userID)
	return nil
}

type mockProductRepo struct {
	byID map[string]*catalog.Product
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

type mockColorRepo struct {
	byID map[string]*catalog.Color
}

func (m *mockColorRepo) GetColorByID(_ context.Context, id string) (*catalog.Color, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrColorNotFound
	}
	return c, nil
}

// --- Helpers ---

var assemblerNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testProduct() *catalog.Product {
	return &catalog.Product{
		ID:   "p1",
		Name: "Curve Standing Desk",
		Images: []catalog.Image{
			{URL: "https://cdn.example.com/p1-main.jpg"},
		},
		Thumbnails: []catalog.Image{
			{URL: "https://cdn.example.com/p1-thumb.jpg"},
		},
		Variants: []catalog.Variant{
			{
				ID:      "v1",
				ColorID: "col-oak",
				Price:   decimal.NewFromInt(500),
				Trial:   true,
				Image:   &catalog.Image{URL: "https://cdn.example.com/p1-v1.jpg"},
			},
			{
				ID:      "v2",
				ColorID: "col-missing",
				Price:   decimal.NewFromInt(700),
			},
		},
	}
}

func newAssembler(carts map[string]*cart.Cart, products ...*catalog.Product) *Assembler {
	byID := make(map[string]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	a := NewAssembler(
		&mockCartRepo{carts: carts},
		&mockProductRepo{byID: byID},
		&mockColorRepo{byID: map[string]*catalog.Color{
			"col-oak": {ID: "col-oak", NameEN: "Oak"},
		}},
	)
	a.now = func() time.Time { return assemblerNow }
	return a
}

// --- Tests ---

func TestAssemble_MissingCartYieldsNilDraft(t *testing.T) {
	a := newAssembler(nil, testProduct())

	draft, err := a.Assemble(context.Background(), "u1", decimal.Zero, "Ann", "0812345678")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestAssemble_EmptyCartYieldsNilDraft(t *testing.T) {
	a := newAssembler(map[string]*cart.Cart{
		"u1": {UserID: "u1", Items: []cart.Line{}},
	}, testProduct())

	draft, err := a.Assemble(context.Background(), "u1", decimal.Zero, "Ann", "0812345678")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestAssemble_SnapshotsVariantFields(t *testing.T) {
	a := newAssembler(map[string]*cart.Cart{
		"u1": {UserID: "u1", Items: []cart.Line{
			{ProductID: "p1", VariantID: "v1", Quantity: 2},
		}},
	}, testProduct())

	draft, err := a.Assemble(context.Background(), "u1", decimal.NewFromInt(150), "Ann", "0812345678")
	require.NoError(t, err)
	require.NotNil(t, draft)
	require.Len(t, draft.Items, 1)

	line := draft.Items[0]
	assert.Equal(t, "p1", line.ProductID)
	assert.Equal(t, "Curve Standing Desk", line.ProductName)
	assert.Equal(t, "v1", line.VariantID)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.Price.Equal(decimal.NewFromInt(500)))
	assert.True(t, line.Trial)
	assert.Equal(t, "Oak", line.ColorName)
	assert.Equal(t, "https://cdn.example.com/p1-v1.jpg", line.Image)

	assert.True(t, draft.Subtotal.Equal(decimal.NewFromInt(1000)), "got %s", draft.Subtotal)
	assert.True(t, draft.InstallationFee.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, DeliveryPending, draft.Shipping.DeliveryStatus)
}

func TestAssemble_SkipsStaleReferences(t *testing.T) {
	a := newAssembler(map[string]*cart.Cart{
		"u1": {UserID: "u1", Items: []cart.Line{
			{ProductID: "gone", VariantID: "v1", Quantity: 1},
			{ProductID: "p1", VariantID: "gone", Quantity: 1},
			{ProductID: "p1", VariantID: "v1", Quantity: 1},
		}},
	}, testProduct())

	draft, err := a.Assemble(context.Background(), "u1", decimal.Zero, "Ann", "0812345678")
	require.NoError(t, err)
	require.NotNil(t, draft)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "v1", draft.Items[0].VariantID)
	assert.True(t, draft.Subtotal.Equal(decimal.NewFromInt(500)))
}

func TestAssemble_AllStaleYieldsNilDraft(t *testing.T) {
	a := newAssembler(map[string]*cart.Cart{
		"u1": {UserID: "u1", Items: []cart.Line{
			{ProductID: "gone", VariantID: "v1", Quantity: 1},
		}},
	}, testProduct())

	draft, err := a.Assemble(context.Background(), "u1", decimal.Zero, "Ann", "0812345678")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestAssemble_ColorFallsBackToRawID(t *testing.T) {
	a := newAssembler(map[string]*cart.Cart{
		"u1": {UserID: "u1", Items: []cart.Line{
			{ProductID: "p1", VariantID: "v2", Quantity: 1},
		}},
	}, testProduct())

	draft, err := a.Assemble(context.Background(), "u1", decimal.Zero, "Ann", "0812345678")
	require.NoError(t, err)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "col-missing", draft.Items[0].ColorName)
}

func TestResolveImage_Priority(t *testing.T) {
	p := testProduct()

	withVariantImage := &p.Variants[0]
	assert.Equal(t, "https://cdn.example.com/p1-v1.jpg", resolveImage(withVariantImage, p))

	noVariantImage := &p.Variants[1]
	assert.Equal(t, "https://cdn.example.com/p1-main.jpg", resolveImage(noVariantImage, p))

	p.Images = nil
	assert.Equal(t, "https://cdn.example.com/p1-thumb.jpg", resolveImage(noVariantImage, p))

	p.Thumbnails = nil
	assert.Equal(t, "", resolveImage(noVariantImage, p))
}

func TestGenerateOrderNumber_Format(t *testing.T) {
	n := generateOrderNumber(assemblerNow)

	parts := strings.Split(n, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "INV", parts[0])
	assert.Equal(t, "1773576000000", parts[1])
	assert.Len(t, parts[2], 4)
}

func TestGenerateOrderNumber_SuffixVaries(t *testing.T) {
	seen := map[string]bool{}
	for range 20 {
		seen[generateOrderNumber(assemblerNow)] = true
	}
	assert.Greater(t, len(seen), 1, "random suffix should vary across calls")
}
