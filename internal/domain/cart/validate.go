package cart

import (
	"errors"

	"github.com/dreamcoffee/storefront/internal/domain/product"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrQuantityLimit    = errors.New("quantity exceeds the per-item limit")
	ErrStockUnavailable = errors.New("product or size is out of stock")
	ErrInvalidProduct   = errors.New("product id is required")
)

// ValidateQuantity gates a mutation before it reaches the pure engine.
// requested is the quantity being added (or the new absolute quantity for an
// update, in which case existing should be zero). The engine itself clamps
// silently; this is where callers get the typed error to surface instead.
func ValidateQuantity(p product.Snapshot, size string, requested, existing int) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	if requested <= 0 {
		return ErrInvalidQuantity
	}
	if existing+requested > MaxQuantity {
		return ErrQuantityLimit
	}
	if !p.Available(size) {
		return ErrStockUnavailable
	}
	return nil
}
