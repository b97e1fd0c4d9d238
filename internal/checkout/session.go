package checkout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dreamcoffee/storefront/internal/domain/order"
	"github.com/dreamcoffee/storefront/internal/pricing"
)

// Step is one screen of the three-step checkout flow.
type Step int

const (
	StepOrderDetails Step = iota // order type, no gate to advance
	StepDeliveryInfo             // contact + address, validated
	StepPayment                  // method selection and review
)

var (
	// phonePattern is deliberately permissive: digits plus common
	// punctuation, length-bounded.
	phonePattern = regexp.MustCompile(`^[0-9+\-\s().]{7,20}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// FieldErrors maps field names to user-facing validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// DeliveryInfo is the step-1 form state. Address fields only matter for
// delivery orders.
type DeliveryInfo struct {
	FullName string
	Phone    string
	Email    string
	Address  string
	City     string
	ZipCode  string
}

// Session is the ephemeral checkout state machine: linear steps with
// back-navigation, forward transitions gated by per-step validation. It is
// never persisted.
type Session struct {
	OrderType     order.OrderType
	PaymentMethod order.PaymentMethod
	Delivery      DeliveryInfo
	Notes         string
	Promo         *pricing.Promotion

	step Step
}

// NewSession starts a checkout at the order-details step, defaulting to
// pickup and card.
func NewSession() *Session {
	return &Session{
		OrderType:     order.TypePickup,
		PaymentMethod: order.MethodCard,
	}
}

// Step returns the active step.
func (s *Session) Step() Step {
	return s.step
}

// Next advances to the following step, running the current step's
// validation gate first. Advancing past the last step is a no-op.
func (s *Session) Next() error {
	switch s.step {
	case StepOrderDetails:
		s.step = StepDeliveryInfo
	case StepDeliveryInfo:
		if errs := s.ValidateDelivery(); len(errs) > 0 {
			return errs
		}
		s.step = StepPayment
	}
	return nil
}

// Back moves to the previous step without validation.
func (s *Session) Back() {
	if s.step > StepOrderDetails {
		s.step--
	}
}

// ValidateDelivery checks the contact fields, plus the address fields when
// the order is a delivery. It returns one message per failing field.
func (s *Session) ValidateDelivery() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(s.Delivery.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}
	if !phonePattern.MatchString(strings.TrimSpace(s.Delivery.Phone)) {
		errs["phone"] = "Enter a valid phone number"
	}
	if !emailPattern.MatchString(strings.TrimSpace(s.Delivery.Email)) {
		errs["email"] = "Enter a valid email address"
	}

	if s.OrderType == order.TypeDelivery {
		if strings.TrimSpace(s.Delivery.Address) == "" {
			errs["address"] = "Address is required for delivery"
		}
		if strings.TrimSpace(s.Delivery.City) == "" {
			errs["city"] = "City is required for delivery"
		}
		if !zipPattern.MatchString(strings.TrimSpace(s.Delivery.ZipCode)) {
			errs["zipCode"] = "Enter a 5 or 9 digit ZIP code"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
