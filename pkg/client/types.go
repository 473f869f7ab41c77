package client

import (
	"time"

	"github.com/tillware/posgate/pkg/auth"
)

// User is the user service's user record
type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
	IsActive bool      `json:"is_active"`
}

// LoginResponse is the payload returned by the login endpoint
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterRequest creates a new user
type RegisterRequest struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

// UserUpdate carries the mutable user fields; nil fields are left unchanged
type UserUpdate struct {
	Email    *string    `json:"email,omitempty"`
	Password *string    `json:"password,omitempty"`
	Role     *auth.Role `json:"role,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

// RoleInfo describes a role as listed by the user service
type RoleInfo struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

type checkPermissionRequest struct {
	Permission string `json:"permission"`
}

type checkPermissionResponse struct {
	HasPermission bool `json:"has_permission"`
}

type effectivePermissionsResponse struct {
	UserID               int64    `json:"user_id"`
	EffectivePermissions []string `json:"effective_permissions"`
}

// SaleItem is one cart line inside a sale
type SaleItem struct {
	ProductID  int64   `json:"product_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// SaleRequest is the sale-creation payload for the POS service
type SaleRequest struct {
	Items          []SaleItem `json:"items"`
	BranchID       int64      `json:"branch_id"`
	UserID         int64      `json:"user_id"`
	PaymentMethod  string     `json:"payment_method"`
	DiscountAmount float64    `json:"discount_amount"`
}

// Sale is a recorded sale as returned by the POS service
type Sale struct {
	ID             int64      `json:"id"`
	Items          []SaleItem `json:"items"`
	BranchID       int64      `json:"branch_id"`
	UserID         int64      `json:"user_id"`
	PaymentMethod  string     `json:"payment_method"`
	DiscountAmount float64    `json:"discount_amount"`
	TotalAmount    float64    `json:"total_amount"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Product is an inventory record
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	MinStock      int     `json:"min_stock"`
}

// ProductRequest creates or updates an inventory record
type ProductRequest struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	MinStock      int     `json:"min_stock"`
}
