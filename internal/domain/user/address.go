package user

import (
	"context"
	"regexp"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrInvalidPostcode is returned for a postcode that is not five digits.
var ErrInvalidPostcode = errors.New("invalid postal code (5 digits)")

var postcodeRe = regexp.MustCompile(`^\d{5}$`)

// AddressInput holds the fields for a new address.
type AddressInput struct {
	BuildingNo    string
	Detail        string
	Postcode      string
	SubdistrictID string
	DistrictID    string
	ProvinceID    string
	IsDefault     bool
}

// AddressPatch is a partial update of an address. Nil fields are untouched.
type AddressPatch struct {
	BuildingNo    *string
	Detail        *string
	Postcode      *string
	SubdistrictID *string
	DistrictID    *string
	ProvinceID    *string
	IsDefault     *bool
}

// AddressManager maintains the single-default-address invariant on the user
// profile across create, update, delete, and select-default.
type AddressManager struct {
	users Repository
}

// NewAddressManager creates an AddressManager.
func NewAddressManager(users Repository) *AddressManager {
	return &AddressManager{users: users}
}

// List returns the user's addresses.
func (m *AddressManager) List(ctx context.Context, userID string) ([]Address, error) {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Addresses, nil
}

// Get returns one address by id.
func (m *AddressManager) Get(ctx context.Context, userID, addressID string) (*Address, error) {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := u.Address(addressID)
	if a == nil {
		return nil, ErrAddressNotFound
	}
	return a, nil
}

// Create appends a new address. It becomes the default when the request
// asks for it, or when the user currently has no default address (which
// includes an empty list). Other defaults are unset in the same write.
func (m *AddressManager) Create(ctx context.Context, userID string, in AddressInput) (*Address, error) {
	if in.Postcode != "" && !postcodeRe.MatchString(in.Postcode) {
		return nil, ErrInvalidPostcode
	}

	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	makeDefault := in.IsDefault || !hasDefault(u.Addresses)
	if makeDefault {
		unsetDefaults(u.Addresses)
	}

	addr := Address{
		ID:            uuid.New().String(),
		BuildingNo:    in.BuildingNo,
		Detail:        in.Detail,
		Postcode:      in.Postcode,
		SubdistrictID: in.SubdistrictID,
		DistrictID:    in.DistrictID,
		ProvinceID:    in.ProvinceID,
		IsDefault:     makeDefault,
	}
	u.Addresses = append(u.Addresses, addr)

	if err := m.users.SaveAddresses(ctx, userID, u.Addresses); err != nil {
		return nil, errors.Wrap(err, "save addresses")
	}
	return &addr, nil
}

// Update applies a partial patch to the target address. Setting
// isDefault=true unsets every other default first.
func (m *AddressManager) Update(ctx context.Context, userID, addressID string, patch AddressPatch) (*Address, error) {
	if patch.Postcode != nil && *patch.Postcode != "" && !postcodeRe.MatchString(*patch.Postcode) {
		return nil, ErrInvalidPostcode
	}

	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := u.Address(addressID)
	if a == nil {
		return nil, ErrAddressNotFound
	}

	if patch.IsDefault != nil && *patch.IsDefault {
		unsetDefaults(u.Addresses)
		a.IsDefault = true
	}
	if patch.BuildingNo != nil {
		a.BuildingNo = *patch.BuildingNo
	}
	if patch.Detail != nil {
		a.Detail = *patch.Detail
	}
	if patch.Postcode != nil {
		a.Postcode = *patch.Postcode
	}
	if patch.SubdistrictID != nil {
		a.SubdistrictID = *patch.SubdistrictID
	}
	if patch.DistrictID != nil {
		a.DistrictID = *patch.DistrictID
	}
	if patch.ProvinceID != nil {
		a.ProvinceID = *patch.ProvinceID
	}

	if err := m.users.SaveAddresses(ctx, userID, u.Addresses); err != nil {
		return nil, errors.Wrap(err, "save addresses")
	}
	return a, nil
}

// Delete removes the target address. When the deleted address was the
// default and at least one address remains, the first remaining address is
// promoted; its id is returned as newDefaultID (empty otherwise).
func (m *AddressManager) Delete(ctx context.Context, userID, addressID string) (newDefaultID string, err error) {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	target := u.Address(addressID)
	if target == nil {
		return "", ErrAddressNotFound
	}
	wasDefault := target.IsDefault

	remaining := make([]Address, 0, len(u.Addresses)-1)
	for _, a := range u.Addresses {
		if a.ID != addressID {
			remaining = append(remaining, a)
		}
	}

	if wasDefault && len(remaining) > 0 {
		remaining[0].IsDefault = true
		newDefaultID = remaining[0].ID
	}

	if err := m.users.SaveAddresses(ctx, userID, remaining); err != nil {
		return "", errors.Wrap(err, "save addresses")
	}
	return newDefaultID, nil
}

// SelectDefault marks an existing address as the default, unsetting all
// others. Fails with ErrAddressNotFound when the id is not on the user.
func (m *AddressManager) SelectDefault(ctx context.Context, userID, addressID string) (*Address, error) {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := u.Address(addressID)
	if a == nil {
		return nil, ErrAddressNotFound
	}

	unsetDefaults(u.Addresses)
	a.IsDefault = true

	if err := m.users.SaveAddresses(ctx, userID, u.Addresses); err != nil {
		return nil, errors.Wrap(err, "save addresses")
	}
	return a, nil
}

func hasDefault(addrs []Address) bool {
	for _, a := range addrs {
		if a.IsDefault {
			return true
		}
	}
	return false
}

func unsetDefaults(addrs []Address) {
	for i := range addrs {
		addrs[i].IsDefault = false
	}
}
