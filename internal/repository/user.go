package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ergolife/storefront/internal/domain/user"
)

const (
	getUserByIDSQL = `SELECT id, first_name, last_name, email, phone, role, addresses,
		created_at, updated_at
		FROM users WHERE id = $1`

	saveUserAddressesSQL = `UPDATE users SET addresses = $2, updated_at = now() WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL. The
// address list lives as JSONB on the user row so SaveAddresses replaces
// it in a single write.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns a user with their embedded addresses.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

// SaveAddresses replaces the user's whole address list in one statement.
func (r *UserRepository) SaveAddresses(ctx context.Context, userID string, addresses []user.Address) error {
	if addresses == nil {
		addresses = []user.Address{}
	}
	addressesJSON, err := json.Marshal(addresses)
	if err != nil {
		return fmt.Errorf("marshaling addresses: %w", err)
	}

	tag, err := r.pool.Exec(ctx, saveUserAddressesSQL, userID, addressesJSON)
	if err != nil {
		return fmt.Errorf("saving addresses for user %q: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u         user.User
		addresses []byte
	)
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role,
		&addresses, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(addresses, &u.Addresses); err != nil {
		return u, fmt.Errorf("unmarshaling user addresses: %w", err)
	}
	return u, nil
}
