package apiclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamcoffee/storefront/internal/domain/order"
)

// OrdersClient talks to the order-creation API.
type OrdersClient struct {
	client *Client
}

func NewOrdersClient(client *Client) *OrdersClient {
	return &OrdersClient{client: client}
}

type createOrderResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    *order.Confirmation `json:"data"`
}

// Create submits an assembled order payload. The returned confirmation
// carries the order number the payment flows key off.
func (c *OrdersClient) Create(ctx context.Context, req order.Request) (*order.Confirmation, error) {
	var resp createOrderResponse
	if err := c.client.do(ctx, "POST", "/orders", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, fmt.Errorf("order creation rejected: %s", resp.Message)
	}
	if resp.Data.OrderNumber == "" {
		return nil, errors.New("order creation returned no order number")
	}
	return resp.Data, nil
}

type listOrdersResponse struct {
	Success bool                 `json:"success"`
	Data    []order.Confirmation `json:"data"`
}

// History returns the caller's past orders.
func (c *OrdersClient) History(ctx context.Context) ([]order.Confirmation, error) {
	var resp listOrdersResponse
	if err := c.client.do(ctx, "GET", "/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
