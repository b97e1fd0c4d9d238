package product

// Size is a purchasable variant of a product with its own price.
type Size struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	InStock *bool   `json:"in_stock,omitempty"` // nil means "unknown, assume available"
}

// Snapshot is a point-in-time copy of a catalog product, captured when an
// item enters the cart. It is owned by the cart item and never re-fetched;
// staleness is tolerated and pruned by an external existence check.
type Snapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
	Image    string  `json:"image,omitempty"`
	InStock  *bool   `json:"in_stock,omitempty"`
	Sizes    []Size  `json:"sizes,omitempty"`
}

// PriceFor returns the price for the given size name, falling back to the
// base price when the size is empty or not present in the snapshot.
func (s Snapshot) PriceFor(size string) float64 {
	if size == "" {
		return s.Price
	}
	for _, sz := range s.Sizes {
		if sz.Name == size {
			return sz.Price
		}
	}
	return s.Price
}

// Available reports whether the product (and, when given, the specific size)
// can currently be purchased. Missing stock flags count as available.
func (s Snapshot) Available(size string) bool {
	if s.InStock != nil && !*s.InStock {
		return false
	}
	if size == "" {
		return true
	}
	for _, sz := range s.Sizes {
		if sz.Name == size {
			return sz.InStock == nil || *sz.InStock
		}
	}
	return true
}
