package checkout

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/dreamcoffee/storefront/internal/apiclient"
	"github.com/dreamcoffee/storefront/internal/domain/cart"
	"github.com/dreamcoffee/storefront/internal/domain/order"
	"github.com/dreamcoffee/storefront/internal/pricing"
)

// defaultSizeLabel is what a size-less item is called on the order record.
const defaultSizeLabel = "Regular"

// OrderCreator submits an assembled order. Implemented by
// apiclient.OrdersClient.
type OrderCreator interface {
	Create(ctx context.Context, req order.Request) (*order.Confirmation, error)
}

// PaymentInitiator drives the post-creation payment step. Implemented by
// apiclient.PaymentsClient.
type PaymentInitiator interface {
	CreateWalletPayment(ctx context.Context, method order.PaymentMethod, req apiclient.WalletRequest) (string, error)
	ConfirmMethod(ctx context.Context, method order.PaymentMethod, orderID string) error
}

// CartSource is the coordinator-facing slice the orchestrator needs: read
// the finalized cart, clear it only after full success.
type CartSource interface {
	Cart() cart.Cart
	ClearCart(ctx context.Context)
}

// Result is the successful outcome of a checkout submission. Exactly one of
// ConfirmationURL (card/cash) or RedirectURL (wallets) is set.
type Result struct {
	OrderNumber     string
	Total           float64
	ConfirmationURL string
	RedirectURL     string
}

// Orchestrator runs the submission path: re-validate, assemble, create the
// order, then branch per payment method. The cart is cleared only by a
// fully successful sequence; every failure leaves it intact for a manual
// retry.
type Orchestrator struct {
	orders   OrderCreator
	payments PaymentInitiator
	carts    CartSource
}

func NewOrchestrator(orders OrderCreator, payments PaymentInitiator, carts CartSource) *Orchestrator {
	return &Orchestrator{orders: orders, payments: payments, carts: carts}
}

// Submit executes handleCheckout for the given session. The session must be
// on the payment step with a method selected.
func (o *Orchestrator) Submit(ctx context.Context, sess *Session) (*Result, error) {
	// Defense in depth: the step gate already ran this, but nothing past
	// this point may assume it did.
	if errs := sess.ValidateDelivery(); len(errs) > 0 {
		return nil, errs
	}

	current := o.carts.Cart()
	req, err := assembleRequest(sess, current)
	if err != nil {
		return nil, err
	}

	confirmation, err := o.orders.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("order creation failed: %w", err)
	}
	log.Printf("[Checkout] Order %s created (%s, %s)", confirmation.OrderNumber, sess.OrderType, sess.PaymentMethod)

	if sess.PaymentMethod.Redirects() {
		return o.completeWallet(ctx, sess, confirmation, req.Totals.Total)
	}
	return o.completeDirect(ctx, sess, confirmation, req.Totals.Total)
}

// completeDirect finishes a card or cash order: confirm the method, clear
// the cart and hand back the confirmation page URL.
func (o *Orchestrator) completeDirect(ctx context.Context, sess *Session, conf *order.Confirmation, total float64) (*Result, error) {
	if err := o.payments.ConfirmMethod(ctx, sess.PaymentMethod, conf.OrderNumber); err != nil {
		// The order exists; confirmation is best-effort acknowledgement.
		log.Printf("[Checkout] Method confirmation failed for %s: %v", conf.OrderNumber, err)
	}

	o.carts.ClearCart(ctx)
	return &Result{
		OrderNumber: conf.OrderNumber,
		Total:       total,
		ConfirmationURL: fmt.Sprintf("/order-confirmation/%s?method=%s&amount=%d",
			conf.OrderNumber, sess.PaymentMethod, minorUnits(total)),
	}, nil
}

// completeWallet initiates the wallet payment. On failure the created order
// stays pending for provider-return reconciliation and the cart survives.
func (o *Orchestrator) completeWallet(ctx context.Context, sess *Session, conf *order.Confirmation, total float64) (*Result, error) {
	payURL, err := o.payments.CreateWalletPayment(ctx, sess.PaymentMethod, apiclient.WalletRequest{
		OrderID:   conf.OrderNumber,
		Amount:    total,
		OrderInfo: fmt.Sprintf("Dream Coffee order %s", conf.OrderNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("payment initiation failed: %w", err)
	}

	o.carts.ClearCart(ctx)
	return &Result{
		OrderNumber: conf.OrderNumber,
		Total:       total,
		RedirectURL: payURL,
	}, nil
}

// assembleRequest builds the order payload from the session and the
// finalized cart, with totals rounded for the summary.
func assembleRequest(sess *Session, c cart.Cart) (order.Request, error) {
	items := make([]order.Item, 0, len(c.Items))
	for _, item := range c.Items {
		size := item.Size
		if size == "" {
			size = defaultSizeLabel
		}
		items = append(items, order.Item{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Size:      size,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	var delivery *order.Address
	if sess.OrderType == order.TypeDelivery {
		delivery = &order.Address{
			Address: sess.Delivery.Address,
			City:    sess.Delivery.City,
			ZipCode: sess.Delivery.ZipCode,
		}
	}

	var promo *order.PromoSummary
	if sess.Promo != nil {
		promo = &order.PromoSummary{
			Code:        sess.Promo.Code,
			Type:        sess.Promo.Type,
			Value:       sess.Promo.Value,
			Description: sess.Promo.Description,
		}
	}

	req := order.Request{
		IdempotencyKey: uuid.New().String(),
		Items:          items,
		OrderType:      sess.OrderType,
		PaymentMethod:  sess.PaymentMethod,
		Contact: order.Contact{
			FullName: sess.Delivery.FullName,
			Phone:    sess.Delivery.Phone,
			Email:    sess.Delivery.Email,
		},
		Delivery: delivery,
		Notes:    sess.Notes,
		Totals:   pricing.FinalTotals(c.Subtotal(), sess.Promo),
		Promo:    promo,
	}
	if err := req.Validate(); err != nil {
		return order.Request{}, err
	}
	return req, nil
}

// minorUnits converts a rounded display amount to integer minor units for
// URL transport.
func minorUnits(amount float64) int {
	return int(math.Round(amount * 100))
}
