package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateSale submits a completed cart to the POS service
func (c *Client) CreateSale(ctx context.Context, req SaleRequest) (*Sale, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("sale has no items")
	}
	var sale Sale
	if err := c.do(ctx, servicePOS, "create_sale", http.MethodPost, c.posURL("/api/v1/sales/"), req, &sale, true); err != nil {
		return nil, err
	}
	return &sale, nil
}

// Sales lists recorded sales with offset pagination
func (c *Client) Sales(ctx context.Context, skip, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("skip", fmt.Sprint(skip))
	query.Set("limit", fmt.Sprint(limit))

	var sales []Sale
	target := c.posURL("/api/v1/sales/") + "?" + query.Encode()
	if err := c.do(ctx, servicePOS, "list_sales", http.MethodGet, target, nil, &sales, true); err != nil {
		return nil, err
	}
	return sales, nil
}
