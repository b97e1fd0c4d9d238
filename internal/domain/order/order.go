package order

import (
	"errors"
	"time"

	"github.com/dreamcoffee/storefront/internal/pricing"
)

// OrderType selects how the customer receives the order.
type OrderType string

const (
	TypePickup   OrderType = "pickup"
	TypeDelivery OrderType = "delivery"
)

// PaymentMethod is the customer's chosen payment path. Card and cash are
// confirm-only; the wallet providers redirect through an external pay page.
type PaymentMethod string

const (
	MethodCard  PaymentMethod = "card"
	MethodCash  PaymentMethod = "cash"
	MethodMomo  PaymentMethod = "momo"
	MethodVNPay PaymentMethod = "vnpay"
)

// Redirects reports whether the method completes on a provider-hosted page.
func (m PaymentMethod) Redirects() bool {
	return m == MethodMomo || m == MethodVNPay
}

// Status is the lifecycle of a created order. A wallet order whose payment
// initiation failed stays pending until the provider-return flow settles it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var (
	ErrEmptyOrder    = errors.New("order must have at least one item")
	ErrMissingTotals = errors.New("order totals are required")
)

// Item is one order line, denormalized from the cart at submission time.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Address is the delivery destination, present only for delivery orders.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
}

// Contact is who placed the order.
type Contact struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// PromoSummary echoes the applied promotion into the order record.
type PromoSummary struct {
	Code        string            `json:"code"`
	Type        pricing.PromoType `json:"type"`
	Value       float64           `json:"value"`
	Description string            `json:"description"`
}

// Request is the payload submitted to the order-creation API.
type Request struct {
	IdempotencyKey string         `json:"idempotency_key"`
	Items          []Item         `json:"items"`
	OrderType      OrderType      `json:"order_type"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	Contact        Contact        `json:"contact"`
	Delivery       *Address       `json:"delivery,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Totals         pricing.Totals `json:"totals"`
	Promo          *PromoSummary  `json:"promo,omitempty"`
}

// Validate is a shape check on the assembled payload, defense in depth
// behind the checkout step validation.
func (r Request) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyOrder
	}
	if r.Totals.Total <= 0 {
		return ErrMissingTotals
	}
	return nil
}

// Confirmation is what the order API returns for a created order.
type Confirmation struct {
	OrderNumber string    `json:"order_number"`
	Status      Status    `json:"status"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}
