package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Products lists the product catalog with offset pagination
func (c *Client) Products(ctx context.Context, skip, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("skip", fmt.Sprint(skip))
	query.Set("limit", fmt.Sprint(limit))

	var products []Product
	target := c.posURL("/api/v1/inventory/") + "?" + query.Encode()
	if err := c.do(ctx, servicePOS, "list_products", http.MethodGet, target, nil, &products, true); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product by id
func (c *Client) Product(ctx context.Context, productID int64) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/api/v1/inventory/%d", productID)
	if err := c.do(ctx, servicePOS, "get_product", http.MethodGet, c.posURL(path), nil, &product, true); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct adds a product to the catalog
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	var product Product
	if err := c.do(ctx, servicePOS, "create_product", http.MethodPost, c.posURL("/api/v1/inventory/"), req, &product, true); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces a product's mutable fields
func (c *Client) UpdateProduct(ctx context.Context, productID int64, req ProductRequest) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/api/v1/inventory/%d", productID)
	if err := c.do(ctx, servicePOS, "update_product", http.MethodPut, c.posURL(path), req, &product, true); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product from the catalog
func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	path := fmt.Sprintf("/api/v1/inventory/%d", productID)
	return c.do(ctx, servicePOS, "delete_product", http.MethodDelete, c.posURL(path), nil, nil, true)
}
