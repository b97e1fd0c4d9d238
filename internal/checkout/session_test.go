package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcoffee/storefront/internal/domain/order"
)

func validDelivery() DeliveryInfo {
	return DeliveryInfo{
		FullName: "Alex Nguyen",
		Phone:    "(555) 123-4567",
		Email:    "alex@example.com",
		Address:  "12 Bean St",
		City:     "Portland",
		ZipCode:  "97201",
	}
}

// ============================================
// Step Transition Tests
// ============================================

func TestSession_StepZeroAdvancesWithoutGate(t *testing.T) {
	s := NewSession()

	require.NoError(t, s.Next())
	assert.Equal(t, StepDeliveryInfo, s.Step())
}

func TestSession_DeliveryStepGatesOnValidation(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Next())

	err := s.Next()

	require.Error(t, err, "empty form must not advance")
	assert.Equal(t, StepDeliveryInfo, s.Step())

	s.Delivery = validDelivery()
	require.NoError(t, s.Next())
	assert.Equal(t, StepPayment, s.Step())
}

func TestSession_BackNavigation(t *testing.T) {
	s := NewSession()
	s.Delivery = validDelivery()
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())

	s.Back()
	assert.Equal(t, StepDeliveryInfo, s.Step())
	s.Back()
	assert.Equal(t, StepOrderDetails, s.Step())
	s.Back() // already at the first step
	assert.Equal(t, StepOrderDetails, s.Step())
}

func TestSession_NextOnLastStepIsNoop(t *testing.T) {
	s := NewSession()
	s.Delivery = validDelivery()
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())

	require.NoError(t, s.Next())
	assert.Equal(t, StepPayment, s.Step())
}

// ============================================
// Validation Tests
// ============================================

func TestValidateDelivery_PickupSkipsAddressFields(t *testing.T) {
	s := NewSession()
	s.OrderType = order.TypePickup
	s.Delivery = DeliveryInfo{
		FullName: "Alex Nguyen",
		Phone:    "5551234567",
		Email:    "alex@example.com",
		// No address fields: fine for pickup.
	}

	assert.Nil(t, s.ValidateDelivery())
}

func TestValidateDelivery_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		orderType order.OrderType
		mutate    func(*DeliveryInfo)
		wantField string
	}{
		{"missing name", order.TypePickup, func(d *DeliveryInfo) { d.FullName = "  " }, "fullName"},
		{"bad phone", order.TypePickup, func(d *DeliveryInfo) { d.Phone = "call me" }, "phone"},
		{"short phone", order.TypePickup, func(d *DeliveryInfo) { d.Phone = "123" }, "phone"},
		{"bad email", order.TypePickup, func(d *DeliveryInfo) { d.Email = "not-an-email" }, "email"},
		{"missing address", order.TypeDelivery, func(d *DeliveryInfo) { d.Address = "" }, "address"},
		{"missing city", order.TypeDelivery, func(d *DeliveryInfo) { d.City = "" }, "city"},
		{"bad zip", order.TypeDelivery, func(d *DeliveryInfo) { d.ZipCode = "9720" }, "zipCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.OrderType = tt.orderType
			s.Delivery = validDelivery()
			tt.mutate(&s.Delivery)

			errs := s.ValidateDelivery()

			require.NotNil(t, errs)
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestValidateDelivery_NineDigitZip(t *testing.T) {
	s := NewSession()
	s.OrderType = order.TypeDelivery
	s.Delivery = validDelivery()
	s.Delivery.ZipCode = "97201-1234"

	assert.Nil(t, s.ValidateDelivery())
}

func TestFieldErrors_ErrorMessageListsFields(t *testing.T) {
	errs := FieldErrors{"phone": "bad", "email": "bad"}

	assert.Equal(t, "invalid fields: email, phone", errs.Error())
}
