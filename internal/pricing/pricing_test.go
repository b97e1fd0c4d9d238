package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Rounding Tests
// ============================================

func TestRound2_HalfUp(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"exact", 27.12, 27.12},
		{"half rounds up", 27.125, 27.13},
		{"below half rounds down", 27.1249, 27.12},
		{"above half rounds up", 27.1251, 27.13},
		{"whole number", 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Round2(tt.in))
		})
	}
}

// ============================================
// Discount Tests
// ============================================

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		promo    *Promotion
		expected float64
	}{
		{"no promotion", 50, nil, 0},
		{"percentage", 50, &Promotion{Type: TypePercentage, Value: 10}, 5},
		{"fixed", 50, &Promotion{Type: TypeFixed, Value: 5}, 5},
		{"fixed never exceeds subtotal", 3, &Promotion{Type: TypeFixed, Value: 5}, 3},
		{"shipping contributes nothing here", 50, &Promotion{Type: TypeShipping, Value: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Discount(tt.subtotal, tt.promo), 1e-9)
		})
	}
}

// ============================================
// FinalTotals Tests
// ============================================

func TestFinalTotals_Save5Example(t *testing.T) {
	// subtotal 30, $5 off -> 25, tax 2.125, total 27.125 -> 27.13 half-up.
	promo := &Promotion{Code: "SAVE5", Type: TypeFixed, Value: 5, MinOrder: 25}

	totals := FinalTotals(30, promo)

	assert.Equal(t, 30.0, totals.Subtotal)
	assert.Equal(t, 5.0, totals.Discount)
	assert.Equal(t, 2.13, totals.Tax)
	assert.Equal(t, 27.13, totals.Total)
}

func TestFinalTotals_NoPromotion(t *testing.T) {
	totals := FinalTotals(20, nil)

	assert.Equal(t, 20.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Discount)
	assert.Equal(t, 1.70, totals.Tax)
	assert.Equal(t, 21.70, totals.Total)
}

func TestFinalTotals_TaxAppliesToDiscountedSubtotal(t *testing.T) {
	promo := &Promotion{Type: TypePercentage, Value: 50}

	totals := FinalTotals(100, promo)

	assert.Equal(t, 50.0, totals.Discount)
	assert.Equal(t, Round2(50*TaxRate), totals.Tax)
	assert.Equal(t, Round2(50+50*TaxRate), totals.Total)
}

// ============================================
// Promo Validation Tests
// ============================================

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(DefaultCodes())

	t.Run("unknown code", func(t *testing.T) {
		_, err := v.Validate("NOPE", 100)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("below minimum order", func(t *testing.T) {
		_, err := v.Validate("SAVE5", 20)
		assert.ErrorIs(t, err, ErrMinimumOrderNotMet)
	})

	t.Run("at minimum order", func(t *testing.T) {
		promo, err := v.Validate("SAVE5", 25)
		require.NoError(t, err)
		assert.Equal(t, TypeFixed, promo.Type)
		assert.Equal(t, 5.0, promo.Value)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		promo, err := v.Validate("  save5 ", 30)
		require.NoError(t, err)
		assert.Equal(t, "SAVE5", promo.Code)
	})

	t.Run("shipping code", func(t *testing.T) {
		promo, err := v.Validate("FREESHIP", 15)
		require.NoError(t, err)
		assert.Equal(t, TypeShipping, promo.Type)
	})
}
