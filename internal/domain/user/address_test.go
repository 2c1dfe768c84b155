package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockUserRepo struct {
	users   map[string]*User
	saveErr error
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	cp.Addresses = append([]Address(nil), u.Addresses...)
	return &cp, nil
}

func (m *mockUserRepo) SaveAddresses(_ context.Context, userID string, addresses []Address) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Addresses = addresses
	return nil
}

// --- Helpers ---

func newManager(addresses ...Address) (*AddressManager, *mockUserRepo) {
	repo := &mockUserRepo{users: map[string]*User{
		"u1": {ID: "u1", Addresses: addresses},
	}}
	return NewAddressManager(repo), repo
}

func defaultCount(addrs []Address) int {
	n := 0
	for _, a := range addrs {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func addr(id string, isDefault bool) Address {
	return Address{ID: id, Detail: "detail-" + id, Postcode: "10110", IsDefault: isDefault}
}

// --- Tests ---

func TestCreate_FirstAddressBecomesDefault(t *testing.T) {
	m, repo := newManager()

	created, err := m.Create(context.Background(), "u1", AddressInput{Detail: "home"})
	require.NoError(t, err)
	assert.True(t, created.IsDefault, "first address is default even when not requested")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, defaultCount(repo.users["u1"].Addresses))
}

func TestCreate_RequestedDefaultUnsetsOthers(t *testing.T) {
	m, repo := newManager(addr("a1", true), addr("a2", false))

	created, err := m.Create(context.Background(), "u1", AddressInput{Detail: "office", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, created.IsDefault)

	saved := repo.users["u1"].Addresses
	require.Len(t, saved, 3)
	assert.Equal(t, 1, defaultCount(saved))
	assert.False(t, saved[0].IsDefault)
}

func TestCreate_NonDefaultKeepsExistingDefault(t *testing.T) {
	m, repo := newManager(addr("a1", true))

	created, err := m.Create(context.Background(), "u1", AddressInput{Detail: "office"})
	require.NoError(t, err)
	assert.False(t, created.IsDefault)

	saved := repo.users["u1"].Addresses
	assert.True(t, saved[0].IsDefault)
	assert.Equal(t, 1, defaultCount(saved))
}

func TestCreate_InvalidPostcode(t *testing.T) {
	m, _ := newManager()

	for _, bad := range []string{"123", "1234567", "1011a"} {
		_, err := m.Create(context.Background(), "u1", AddressInput{Postcode: bad})
		require.ErrorIs(t, err, ErrInvalidPostcode, "postcode %q", bad)
	}
}

func TestUpdate_SetDefaultUnsetsOthers(t *testing.T) {
	m, repo := newManager(addr("a1", true), addr("a2", false))

	isDefault := true
	updated, err := m.Update(context.Background(), "u1", "a2", AddressPatch{IsDefault: &isDefault})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	saved := repo.users["u1"].Addresses
	assert.Equal(t, 1, defaultCount(saved))
	assert.False(t, saved[0].IsDefault)
	assert.True(t, saved[1].IsDefault)
}

func TestUpdate_PartialPatchLeavesOtherFields(t *testing.T) {
	m, repo := newManager(addr("a1", true))

	detail := "new detail"
	updated, err := m.Update(context.Background(), "u1", "a1", AddressPatch{Detail: &detail})
	require.NoError(t, err)
	assert.Equal(t, "new detail", updated.Detail)
	assert.Equal(t, "10110", updated.Postcode)
	assert.True(t, updated.IsDefault, "untouched default flag preserved")
	assert.Equal(t, "new detail", repo.users["u1"].Addresses[0].Detail)
}

func TestUpdate_UnknownAddress(t *testing.T) {
	m, _ := newManager(addr("a1", true))

	_, err := m.Update(context.Background(), "u1", "missing", AddressPatch{})
	require.ErrorIs(t, err, ErrAddressNotFound)
}

func TestDelete_NonDefaultLeavesDefaultAlone(t *testing.T) {
	m, repo := newManager(addr("a1", true), addr("a2", false))

	newDefaultID, err := m.Delete(context.Background(), "u1", "a2")
	require.NoError(t, err)
	assert.Empty(t, newDefaultID)

	saved := repo.users["u1"].Addresses
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsDefault)
}

func TestDelete_DefaultPromotesFirstRemaining(t *testing.T) {
	m, repo := newManager(addr("a1", true), addr("a2", false), addr("a3", false))

	newDefaultID, err := m.Delete(context.Background(), "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "a2", newDefaultID)

	saved := repo.users["u1"].Addresses
	require.Len(t, saved, 2)
	assert.Equal(t, 1, defaultCount(saved))
	assert.True(t, saved[0].IsDefault)
}

func TestDelete_LastAddressLeavesEmptyList(t *testing.T) {
	m, repo := newManager(addr("a1", true))

	newDefaultID, err := m.Delete(context.Background(), "u1", "a1")
	require.NoError(t, err)
	assert.Empty(t, newDefaultID)
	assert.Empty(t, repo.users["u1"].Addresses)
}

func TestSelectDefault(t *testing.T) {
	m, repo := newManager(addr("a1", true), addr("a2", false))

	selected, err := m.SelectDefault(context.Background(), "u1", "a2")
	require.NoError(t, err)
	assert.True(t, selected.IsDefault)
	assert.Equal(t, 1, defaultCount(repo.users["u1"].Addresses))
}

func TestSelectDefault_UnknownAddress(t *testing.T) {
	m, _ := newManager(addr("a1", true))

	_, err := m.SelectDefault(context.Background(), "u1", "missing")
	require.ErrorIs(t, err, ErrAddressNotFound)
}

// Mixed sequence of operations never leaves the profile with more than one
// default, and only loses the default when the list empties.
func TestDefaultInvariant_AcrossSequences(t *testing.T) {
	m, repo := newManager()
	ctx := context.Background()

	a, err := m.Create(ctx, "u1", AddressInput{Detail: "home"})
	require.NoError(t, err)
	b, err := m.Create(ctx, "u1", AddressInput{Detail: "office", IsDefault: true})
	require.NoError(t, err)
	_, err = m.Create(ctx, "u1", AddressInput{Detail: "condo"})
	require.NoError(t, err)

	assert.Equal(t, 1, defaultCount(repo.users["u1"].Addresses))

	_, err = m.SelectDefault(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, defaultCount(repo.users["u1"].Addresses))

	newDefault, err := m.Delete(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, newDefault)
	assert.Equal(t, 1, defaultCount(repo.users["u1"].Addresses))

	_, err = m.Delete(ctx, "u1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, defaultCount(repo.users["u1"].Addresses))
}
