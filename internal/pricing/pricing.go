package pricing

import "math"

// TaxRate is the fixed sales tax applied to the discounted subtotal.
const TaxRate = 0.085

// Totals is the customer-facing money summary for a cart. All fields are
// rounded to two decimals; intermediate math stays unrounded.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Round2 rounds to two decimal places, halves up. The cent value
// charged depends on this rule, so every presentation-point rounding in the
// module goes through here.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Tax returns the unrounded tax for a (discounted) subtotal.
func Tax(subtotal float64) float64 {
	return subtotal * TaxRate
}

// Discount computes the amount a promotion takes off the subtotal. A fixed
// discount never exceeds the subtotal; shipping promotions apply to the
// delivery-fee line elsewhere and contribute nothing here.
func Discount(subtotal float64, promo *Promotion) float64 {
	if promo == nil {
		return 0
	}
	switch promo.Type {
	case TypePercentage:
		return subtotal * promo.Value / 100
	case TypeFixed:
		return math.Min(promo.Value, subtotal)
	case TypeShipping:
		return 0
	}
	return 0
}

// FinalTotals derives the full money summary: discount off the subtotal, tax
// on what remains, rounding applied only to the returned figures.
func FinalTotals(subtotal float64, promo *Promotion) Totals {
	discount := Discount(subtotal, promo)
	discounted := subtotal - discount
	tax := Tax(discounted)
	return Totals{
		Subtotal: Round2(subtotal),
		Discount: Round2(discount),
		Tax:      Round2(tax),
		Total:    Round2(discounted + tax),
	}
}
