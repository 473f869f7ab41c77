package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tillware/posgate/pkg/auth"
)

// Login authenticates against the user service. The credential is returned
// to the caller (the session store); nothing is persisted here. Bad
// credentials map to ErrAuthenticationFailure, transport failures to
// ErrAuthorityUnreachable.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, serviceUser, "login", http.MethodPost, c.userURL("/api/v1/auth/login"), body, &resp, false); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %s", ErrAuthenticationFailure, apiErr.Detail)
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token in login response", ErrAuthenticationFailure)
	}
	return &resp, nil
}

// Register creates a user. The role is validated against the closed
// vocabulary before the request leaves the client.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if !auth.KnownRole(req.Role) {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}
	var user User
	if err := c.do(ctx, serviceUser, "register", http.MethodPost, c.userURL("/api/v1/auth/register"), req, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyToken checks the current credential against the authority.
// Development tokens are always valid and verified locally. A 401 answer
// means "invalid" and is not an error; transport failures are.
func (c *Client) VerifyToken(ctx context.Context) (bool, error) {
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && auth.IsDevToken(token) {
			return true, nil
		}
	}
	err := c.do(ctx, serviceUser, "verify_token", http.MethodGet, c.userURL("/api/v1/auth/me"), nil, nil, true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrAuthenticationFailure) {
		return false, nil
	}
	return false, err
}

// Me returns the authenticated user's record
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, serviceUser, "me", http.MethodGet, c.userURL("/api/v1/auth/me"), nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckPermission asks the authority whether the current principal holds a
// single permission. Implements rbac.Authority.
func (c *Client) CheckPermission(ctx context.Context, permission string) (bool, error) {
	req := checkPermissionRequest{Permission: permission}
	var resp checkPermissionResponse
	if err := c.do(ctx, serviceUser, "check_permission", http.MethodPost, c.userURL("/api/v1/auth/check-permission"), req, &resp, true); err != nil {
		return false, err
	}
	return resp.HasPermission, nil
}

// SelfPermissions returns the current principal's permission list
func (c *Client) SelfPermissions(ctx context.Context) ([]string, error) {
	var perms []string
	if err := c.do(ctx, serviceUser, "self_permissions", http.MethodGet, c.userURL("/api/v1/auth/permissions"), nil, &perms, true); err != nil {
		return nil, err
	}
	return perms, nil
}

// EffectivePermissions returns the authoritative permission set for a user,
// including user-specific grants layered over role defaults
func (c *Client) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	var resp effectivePermissionsResponse
	path := fmt.Sprintf("/api/v1/rbac/users/%d/effective-permissions", userID)
	if err := c.do(ctx, serviceUser, "effective_permissions", http.MethodGet, c.userURL(path), nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.EffectivePermissions, nil
}

// Roles lists the roles the user service knows about
func (c *Client) Roles(ctx context.Context) ([]RoleInfo, error) {
	var roles []RoleInfo
	if err := c.do(ctx, serviceUser, "roles", http.MethodGet, c.userURL("/api/v1/auth/roles"), nil, &roles, true); err != nil {
		return nil, err
	}
	return roles, nil
}

// Users lists user records with offset pagination
func (c *Client) Users(ctx context.Context, skip, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("skip", fmt.Sprint(skip))
	query.Set("limit", fmt.Sprint(limit))

	var users []User
	target := c.userURL("/api/v1/auth/users") + "?" + query.Encode()
	if err := c.do(ctx, serviceUser, "list_users", http.MethodGet, target, nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies a partial update to a user record
func (c *Client) UpdateUser(ctx context.Context, userID int64, update UserUpdate) (*User, error) {
	if update.Role != nil && !auth.KnownRole(*update.Role) {
		return nil, fmt.Errorf("unknown role %q", *update.Role)
	}
	var user User
	path := fmt.Sprintf("/api/v1/auth/users/%d", userID)
	if err := c.do(ctx, serviceUser, "update_user", http.MethodPut, c.userURL(path), update, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user record
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("/api/v1/auth/users/%d", userID)
	return c.do(ctx, serviceUser, "delete_user", http.MethodDelete, c.userURL(path), nil, nil, true)
}
