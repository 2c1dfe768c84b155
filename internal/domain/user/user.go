package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for user lookups.
var (
	ErrNotFound        = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")
)

// Address is an owned child record of a user. It keeps a stable id even
// though it is embedded in the user document.
type Address struct {
	ID            string `json:"addressId"`
	BuildingNo    string `json:"buildingNo"`
	Detail        string `json:"detail"`
	Postcode      string `json:"postcode"`
	SubdistrictID string `json:"subdistrictId"`
	DistrictID    string `json:"districtId"`
	ProvinceID    string `json:"provinceId"`
	IsDefault     bool   `json:"isDefault"`
}

// User is the profile record. Invariant: at most one address has
// IsDefault=true; when the list is non-empty exactly one should.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      string
	Addresses []Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address returns the embedded address with the given id, or nil.
func (u *User) Address(id string) *Address {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return &u.Addresses[i]
		}
	}
	return nil
}

// Repository defines persistence for user profiles. SaveAddresses replaces
// the whole embedded address list in one write, so unset-all-then-set-new
// is never observable as a transient two-default state.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	SaveAddresses(ctx context.Context, userID string, addresses []Address) error
}
