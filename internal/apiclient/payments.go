package apiclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamcoffee/storefront/internal/domain/order"
)

var ErrNoPaymentURL = errors.New("payment provider returned no pay URL")

// PaymentsClient talks to the payment-initiation endpoints. The two wallet
// providers are opaque: we post an order reference and get a redirect URL.
type PaymentsClient struct {
	client *Client
}

func NewPaymentsClient(client *Client) *PaymentsClient {
	return &PaymentsClient{client: client}
}

// WalletRequest is the payment-initiation payload shared by both wallets.
// Amount is in the display currency, not minor units; the providers convert.
type WalletRequest struct {
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
	OrderInfo string  `json:"orderInfo"`
}

// walletResponse tolerates both providers' field naming for the redirect.
type walletResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	PayURL     string `json:"payUrl,omitempty"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}

// CreateWalletPayment initiates a wallet payment for a created order and
// returns the provider-hosted URL to redirect the customer to.
func (c *PaymentsClient) CreateWalletPayment(ctx context.Context, method order.PaymentMethod, req WalletRequest) (string, error) {
	if !method.Redirects() {
		return "", fmt.Errorf("payment method %q is not a wallet", method)
	}

	var resp walletResponse
	path := fmt.Sprintf("/payments/%s/create", method)
	if err := c.client.do(ctx, "POST", path, req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("payment initiation rejected: %s", resp.Message)
	}

	url := resp.PayURL
	if url == "" {
		url = resp.PaymentURL
	}
	if url == "" {
		return "", ErrNoPaymentURL
	}
	return url, nil
}

// ConfirmMethod acknowledges a card or cash selection for a created order.
// Fire-and-confirm: no redirect follows.
func (c *PaymentsClient) ConfirmMethod(ctx context.Context, method order.PaymentMethod, orderID string) error {
	if method.Redirects() {
		return fmt.Errorf("payment method %q requires wallet initiation", method)
	}
	path := fmt.Sprintf("/payments/%s/confirm", method)
	return c.client.do(ctx, "POST", path, map[string]string{"orderId": orderID}, nil)
}
