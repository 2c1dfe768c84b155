package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ergolife/storefront/internal/domain/catalog"
)

// --- Mock implementations ---

type mockCartRepo struct {
	carts   map[string]*Cart
	saveErr error
	saved   []*Cart
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	cp.Items = append([]Line(nil), c.Items...)
	return &cp, nil
}

func (m *mockCartRepo) Save(_ context.Context, c *Cart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, c)
	m.carts[c.UserID] = c
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, userID string) error {
	if c, ok := m.carts[userID]; ok {
		c.Items = []Line{}
	}
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

// --- Helpers ---

func newService(carts map[string]*Cart) (*Service, *mockCartRepo) {
	repo := &mockCartRepo{carts: carts}
	products := &mockProductRepo{byID: map[string]*catalog.Product{
		"p1": {
			ID:   "p1",
			Name: "Curve Desk",
			Variants: []catalog.Variant{
				{ID: "v1", ColorID: "col-oak"},
				{ID: "v2", ColorID: "col-walnut"},
			},
		},
	}}
	return NewService(repo, products), repo
}

// --- Tests ---

func TestGet_MissingCartIsEmpty(t *testing.T) {
	svc, _ := newService(map[string]*Cart{})

	c, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Empty(t, c.Items)
	assert.NotNil(t, c.Items, "empty cart carries an empty list, not nil")
}

func TestAddItem_NewLine(t *testing.T) {
	svc, repo := newService(map[string]*Cart{})

	c, err := svc.AddItem(context.Background(), "u1", Line{ProductID: "p1", VariantID: "v1", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	require.Len(t, repo.saved, 1)
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	svc, _ := newService(map[string]*Cart{
		"u1": {UserID: "u1", Items: []Line{{ProductID: "p1", VariantID: "v1", Quantity: 2}}},
	})

	c, err := svc.AddItem(context.Background(), "u1", Line{ProductID: "p1", VariantID: "v1", Quantity: 3})
	require.NoError(t, err)
	require.Len(t, c.Items, 1, "same (product, variant) pair merges into one line")
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddItem_DifferentVariantIsSeparateLine(t *testing.T) {
	svc, _ := newService(map[string]*Cart{
		"u1": {UserID: "u1", Items: []Line{{ProductID: "p1", VariantID: "v1", Quantity: 1}}},
	})

	c, err := svc.AddItem(context.Background(), "u1", Line{ProductID: "p1", VariantID: "v2", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
}

func TestAddItem_Validation(t *testing.T) {
	svc, repo := newService(map[string]*Cart{})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", Line{ProductID: "p1", VariantID: "v1", Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, "u1", Line{ProductID: "missing", VariantID: "v1", Quantity: 1})
	require.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.AddItem(ctx, "u1", Line{ProductID: "p1", VariantID: "missing", Quantity: 1})
	require.ErrorIs(t, err, catalog.ErrVariantNotFound)

	assert.Empty(t, repo.saved, "rejected adds write nothing")
}

func TestUpdateItem_ReplacesQuantity(t *testing.T) {
	svc, _ := newService(map[string]*Cart{
		"u1": {UserID: "u1", Items: []Line{{ProductID: "p1", VariantID: "v1", Quantity: 2}}},
	})

	c, err := svc.UpdateItem(context.Background(), "u1", LineKey{ProductID: "p1", VariantID: "v1"}, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

func TestUpdateItem_MissingLine(t *testing.T) {
	svc, _ := newService(map[string]*Cart{
		"u1": {UserID: "u1", Items: []Line{{ProductID: "p1", VariantID: "v1", Quantity: 2}}},
	})

	_, err := svc.UpdateItem(context.Background(), "u1", LineKey{ProductID: "p1", VariantID: "v2"}, 1)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateItem_InvalidQuantity(t *testing.T) {
	svc, _ := newService(map[string]*Cart{})

	_, err := svc.UpdateItem(context.Background(), "u1", LineKey{ProductID: "p1", VariantID: "v1"}, -1)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRemoveItems_IgnoresMisses(t *testing.T) {
	svc, _ := newService(map[string]*Cart{
		"u1": {UserID: "u1", Items: []Line{
			{ProductID: "p1", VariantID: "v1", Quantity: 1},
			{ProductID: "p1", VariantID: "v2", Quantity: 2},
		}},
	})

	c, err := svc.RemoveItems(context.Background(), "u1", []LineKey{
		{ProductID: "p1", VariantID: "v1"},
		{ProductID: "p9", VariantID: "v9"},
	})
	require.NoError(t, err)
	require.Len(t, c.Items, 1, "missing keys are ignored, matching lines removed")
	assert.Equal(t, "v2", c.Items[0].VariantID)
}

func TestRemoveItems_MissingCart(t *testing.T) {
	svc, repo := newService(map[string]*Cart{})

	c, err := svc.RemoveItems(context.Background(), "u1", []LineKey{{ProductID: "p1", VariantID: "v1"}})
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Empty(t, repo.saved)
}
