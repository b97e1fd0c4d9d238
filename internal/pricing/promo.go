package pricing

import (
	"errors"
	"strings"
)

// PromoType classifies how a promotion's value is applied.
type PromoType string

const (
	TypePercentage PromoType = "percentage"
	TypeFixed      PromoType = "fixed"
	TypeShipping   PromoType = "shipping"
)

var (
	ErrInvalidCode        = errors.New("promo code not recognized")
	ErrMinimumOrderNotMet = errors.New("cart subtotal is below the promo minimum")
)

// Promotion is a validated promotional code. At most one promotion is active
// per cart; applying another replaces it, there is no stacking.
type Promotion struct {
	Code        string    `json:"code"`
	Type        PromoType `json:"type"`
	Value       float64   `json:"value"`
	MinOrder    float64   `json:"min_order"`
	Description string    `json:"description"`
}

// Validator checks candidate promo codes against a code table. Construct one
// per storefront; there is deliberately no package-level default instance.
type Validator struct {
	codes map[string]Promotion
}

// NewValidator builds a Validator over the given table. Codes are indexed by
// their upper-cased form.
func NewValidator(codes []Promotion) *Validator {
	table := make(map[string]Promotion, len(codes))
	for _, p := range codes {
		p.Code = strings.ToUpper(p.Code)
		table[p.Code] = p
	}
	return &Validator{codes: table}
}

// DefaultCodes is the storefront's built-in promotion table.
func DefaultCodes() []Promotion {
	return []Promotion{
		{Code: "WELCOME10", Type: TypePercentage, Value: 10, MinOrder: 20, Description: "10% off your first order"},
		{Code: "SAVE5", Type: TypeFixed, Value: 5, MinOrder: 25, Description: "$5 off orders over $25"},
		{Code: "FREESHIP", Type: TypeShipping, Value: 0, MinOrder: 15, Description: "Free delivery on orders over $15"},
	}
}

// Validate normalizes the code, looks it up and checks the minimum-order
// threshold against the cart subtotal. On success the promotion record is
// returned for the caller to hold as the single active promotion.
func (v *Validator) Validate(code string, subtotal float64) (*Promotion, error) {
	promo, ok := v.codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrInvalidCode
	}
	if subtotal < promo.MinOrder {
		return nil, ErrMinimumOrderNotMet
	}
	return &promo, nil
}
