package catalog

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrColorNotFound is returned when a referenced color does not exist.
var ErrColorNotFound = errors.New("color not found")

// Color is a display label for a variant's color reference.
type Color struct {
	ID     string
	NameEN string
	NameTH string
}

// ColorRepository provides color lookups by id.
type ColorRepository interface {
	GetColorByID(ctx context.Context, id string) (*Color, error)
}
