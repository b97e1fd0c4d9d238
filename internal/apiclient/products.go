package apiclient

import (
	"context"
	"errors"
	"net/http"
)

// ProductsClient is the product-existence oracle used to prune stale cart
// snapshots. The catalog itself is browsed elsewhere; the cart core only
// ever asks "does this product still exist?".
type ProductsClient struct {
	client *Client
}

func NewProductsClient(client *Client) *ProductsClient {
	return &ProductsClient{client: client}
}

// Exists checks whether a product is still in the catalog. A 404 is a clean
// "no"; any other failure is reported so callers can skip pruning rather
// than drop items on a flaky network.
func (c *ProductsClient) Exists(ctx context.Context, productID string) (bool, error) {
	err := c.client.do(ctx, "GET", "/products/"+productID, nil, nil)
	if err == nil {
		return true, nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
		return false, nil
	}
	return false, err
}
