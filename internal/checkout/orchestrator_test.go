package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcoffee/storefront/internal/apiclient"
	"github.com/dreamcoffee/storefront/internal/domain/cart"
	"github.com/dreamcoffee/storefront/internal/domain/order"
	"github.com/dreamcoffee/storefront/internal/domain/product"
	"github.com/dreamcoffee/storefront/internal/pricing"
)

// ============================================
// Fakes
// ============================================

type fakeOrders struct {
	calls    int
	lastReq  order.Request
	err      error
	orderNum string
}

func (f *fakeOrders) Create(ctx context.Context, req order.Request) (*order.Confirmation, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	num := f.orderNum
	if num == "" {
		num = "DC-1001"
	}
	return &order.Confirmation{OrderNumber: num, Status: order.StatusPending, Total: req.Totals.Total}, nil
}

type fakePayments struct {
	walletCalls  int
	walletErr    error
	payURL       string
	confirmErr   error
	confirmCalls int
	lastMethod   order.PaymentMethod
}

func (f *fakePayments) CreateWalletPayment(ctx context.Context, method order.PaymentMethod, req apiclient.WalletRequest) (string, error) {
	f.walletCalls++
	f.lastMethod = method
	if f.walletErr != nil {
		return "", f.walletErr
	}
	return f.payURL, nil
}

func (f *fakePayments) ConfirmMethod(ctx context.Context, method order.PaymentMethod, orderID string) error {
	f.confirmCalls++
	f.lastMethod = method
	return f.confirmErr
}

type fakeCart struct {
	current cart.Cart
	cleared bool
}

func (f *fakeCart) Cart() cart.Cart               { return f.current }
func (f *fakeCart) ClearCart(ctx context.Context) { f.cleared = true }

func checkoutCart(t *testing.T) cart.Cart {
	t.Helper()
	c := cart.Apply(cart.Empty(), cart.AddItem{
		Product:  product.Snapshot{ID: "latte", Name: "Latte", Price: 5.00},
		Quantity: 4,
	})
	return cart.Apply(c, cart.AddItem{
		Product:  product.Snapshot{ID: "mocha", Name: "Mocha", Price: 5.00},
		Quantity: 2,
	})
}

func paymentSession(method order.PaymentMethod) *Session {
	s := NewSession()
	s.PaymentMethod = method
	s.Delivery = validDelivery()
	return s
}

// ============================================
// Submission Guard Tests
// ============================================

func TestSubmit_InvalidDeliveryNeverReachesAPI(t *testing.T) {
	orders := &fakeOrders{}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, &fakePayments{}, carts)

	sess := NewSession()
	sess.OrderType = order.TypeDelivery
	sess.Delivery = validDelivery()
	sess.Delivery.Address = "" // required for delivery

	_, err := o.Submit(context.Background(), sess)

	require.Error(t, err)
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "address")
	assert.Equal(t, 0, orders.calls, "order API must not be called")
	assert.False(t, carts.cleared)
}

func TestSubmit_EmptyCartRejected(t *testing.T) {
	orders := &fakeOrders{}
	o := NewOrchestrator(orders, &fakePayments{}, &fakeCart{current: cart.Empty()})

	_, err := o.Submit(context.Background(), paymentSession(order.MethodCard))

	require.ErrorIs(t, err, order.ErrEmptyOrder)
	assert.Equal(t, 0, orders.calls)
}

func TestSubmit_OrderCreationFailureLeavesCartIntact(t *testing.T) {
	orders := &fakeOrders{err: &apiclient.HTTPError{Status: 500, Body: "boom"}}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, &fakePayments{}, carts)

	_, err := o.Submit(context.Background(), paymentSession(order.MethodCard))

	require.Error(t, err)
	assert.False(t, carts.cleared, "failed submission must not clear the cart")
}

func TestSubmit_SessionExpiryPassesThrough(t *testing.T) {
	orders := &fakeOrders{err: fmt.Errorf("create order: %w", apiclient.ErrSessionExpired)}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, &fakePayments{}, carts)

	_, err := o.Submit(context.Background(), paymentSession(order.MethodCard))

	require.ErrorIs(t, err, apiclient.ErrSessionExpired)
	assert.False(t, carts.cleared)
}

// ============================================
// Direct Method Tests (card / cash)
// ============================================

func TestSubmit_CardSuccessClearsCartAndBuildsConfirmationURL(t *testing.T) {
	orders := &fakeOrders{orderNum: "DC-2042"}
	payments := &fakePayments{}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, payments, carts)

	res, err := o.Submit(context.Background(), paymentSession(order.MethodCard))

	require.NoError(t, err)
	assert.True(t, carts.cleared)
	assert.Equal(t, 1, payments.confirmCalls)
	assert.Equal(t, "DC-2042", res.OrderNumber)
	// Subtotal 30.00, tax 2.55, total 32.55 -> 3255 minor units.
	assert.Equal(t, 32.55, res.Total)
	assert.Equal(t, "/order-confirmation/DC-2042?method=card&amount=3255", res.ConfirmationURL)
	assert.Empty(t, res.RedirectURL)
}

func TestSubmit_ConfirmFailureStillCompletes(t *testing.T) {
	orders := &fakeOrders{}
	payments := &fakePayments{confirmErr: errors.New("confirm endpoint down")}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, payments, carts)

	res, err := o.Submit(context.Background(), paymentSession(order.MethodCash))

	require.NoError(t, err, "method confirmation is best-effort")
	assert.True(t, carts.cleared)
	assert.NotEmpty(t, res.ConfirmationURL)
}

// ============================================
// Wallet Method Tests (momo / vnpay)
// ============================================

func TestSubmit_WalletSuccessRedirects(t *testing.T) {
	orders := &fakeOrders{}
	payments := &fakePayments{payURL: "https://pay.momo.example/tx/abc"}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, payments, carts)

	res, err := o.Submit(context.Background(), paymentSession(order.MethodMomo))

	require.NoError(t, err)
	assert.True(t, carts.cleared)
	assert.Equal(t, "https://pay.momo.example/tx/abc", res.RedirectURL)
	assert.Empty(t, res.ConfirmationURL)
	assert.Equal(t, order.MethodMomo, payments.lastMethod)
	assert.Equal(t, 0, payments.confirmCalls, "wallets never use the confirm endpoint")
}

func TestSubmit_WalletInitiationFailureKeepsCart(t *testing.T) {
	orders := &fakeOrders{}
	payments := &fakePayments{walletErr: errors.New("provider unavailable")}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, payments, carts)

	_, err := o.Submit(context.Background(), paymentSession(order.MethodVNPay))

	require.Error(t, err)
	assert.Equal(t, 1, orders.calls, "the order was created before the payment step")
	assert.False(t, carts.cleared, "cart must survive a failed payment initiation")
}

// ============================================
// Request Assembly Tests
// ============================================

func TestSubmit_RequestAssembly(t *testing.T) {
	orders := &fakeOrders{}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, &fakePayments{}, carts)

	sess := paymentSession(order.MethodCard)
	sess.OrderType = order.TypeDelivery
	sess.Notes = "extra hot"
	sess.Promo = &pricing.Promotion{
		Code:        "SAVE5",
		Type:        pricing.TypeFixed,
		Value:       5,
		MinOrder:    25,
		Description: "$5 off orders over $25",
	}

	_, err := o.Submit(context.Background(), sess)
	require.NoError(t, err)

	req := orders.lastReq
	assert.NotEmpty(t, req.IdempotencyKey)
	require.Len(t, req.Items, 2)
	assert.Equal(t, defaultSizeLabel, req.Items[0].Size, "size-less items get the default label")
	assert.Equal(t, order.TypeDelivery, req.OrderType)
	require.NotNil(t, req.Delivery)
	assert.Equal(t, "Portland", req.Delivery.City)
	assert.Equal(t, "extra hot", req.Notes)
	require.NotNil(t, req.Promo)
	assert.Equal(t, "SAVE5", req.Promo.Code)

	// Subtotal 30, SAVE5 -> 25, tax 2.13, total 27.13.
	assert.Equal(t, 30.0, req.Totals.Subtotal)
	assert.Equal(t, 5.0, req.Totals.Discount)
	assert.Equal(t, 2.13, req.Totals.Tax)
	assert.Equal(t, 27.13, req.Totals.Total)
}

func TestSubmit_PickupOmitsDeliveryAddress(t *testing.T) {
	orders := &fakeOrders{}
	carts := &fakeCart{current: checkoutCart(t)}
	o := NewOrchestrator(orders, &fakePayments{}, carts)

	_, err := o.Submit(context.Background(), paymentSession(order.MethodCard))
	require.NoError(t, err)

	assert.Nil(t, orders.lastReq.Delivery)
	assert.Nil(t, orders.lastReq.Promo)
}
