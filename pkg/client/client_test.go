package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillware/posgate/pkg/auth"
	"github.com/tillware/posgate/pkg/observability"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Token() (string, bool) {
	return s.token, s.token != ""
}

func newTestClient(t *testing.T, userURL, posURL string, tokens TokenProvider) *Client {
	t.Helper()
	return New(Config{
		UserServiceURL: userURL,
		POSServiceURL:  posURL,
	}, tokens, observability.NopLogger(), observability.NopMetrics())
}

func newUserBackend(t *testing.T) (*mux.Router, *httptest.Server) {
	t.Helper()
	router := mux.NewRouter()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return router, server
}

func TestLogin(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["username"] != "manager" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
			return
		}
		json.NewEncoder(w).Encode(LoginResponse{
			AccessToken: "token-123",
			TokenType:   "bearer",
			User:        User{ID: 2, Username: "manager", Role: auth.RoleManager, IsActive: true},
		})
	}).Methods(http.MethodPost)

	c := newTestClient(t, server.URL, server.URL, nil)

	resp, err := c.Login(context.Background(), "manager", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-123", resp.AccessToken)
	assert.Equal(t, auth.RoleManager, resp.User.Role)

	_, err = c.Login(context.Background(), "manager", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailure)
	assert.Contains(t, err.Error(), "Incorrect username or password")
}

func TestBearerAttachedWhenTokenPresent(t *testing.T) {
	var gotAuth string
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(User{ID: 1, Username: "admin", Role: auth.RoleAdmin})
	}).Methods(http.MethodGet)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "admin", user.Username)
}

func TestRequestIDHeaderSet(t *testing.T) {
	var gotID string
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(User{})
	}).Methods(http.MethodGet)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	ctx := observability.WithRequestID(context.Background(), "req-42")
	_, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-42", gotID)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}

func TestUnauthorizedHookFiresOnlyWhenTokenAttached(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	}).Methods(http.MethodGet)

	fired := 0
	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "stale"})
	c.SetOnUnauthorized(func() { fired++ })

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrAuthenticationFailure)
	assert.Equal(t, 1, fired)

	// Without a credential the 401 is still an auth failure, but there is
	// no session to invalidate.
	c.SetTokenProvider(nil)
	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, ErrAuthenticationFailure)
	assert.Equal(t, 1, fired)
}

func TestUnreachableAuthority(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", "http://127.0.0.1:1", staticTokens{token: "abc"})

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthorityUnreachable)
	assert.True(t, IsUnreachable(err))
}

func TestAPIErrorDetail(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/auth/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "User not found"})
	}).Methods(http.MethodDelete)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	err := c.DeleteUser(context.Background(), 99)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "User not found", apiErr.Detail)
}

func TestCheckPermission(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/auth/check-permission", func(w http.ResponseWriter, r *http.Request) {
		var req checkPermissionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(checkPermissionResponse{HasPermission: req.Permission == "create_sale"})
	}).Methods(http.MethodPost)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	ok, err := c.CheckPermission(context.Background(), "create_sale")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CheckPermission(context.Background(), "delete_branch")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEffectivePermissions(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/rbac/users/{id}/effective-permissions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", mux.Vars(r)["id"])
		json.NewEncoder(w).Encode(effectivePermissionsResponse{
			UserID:               7,
			EffectivePermissions: []string{"create_sale", "read_sale"},
		})
	}).Methods(http.MethodGet)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	perms, err := c.EffectivePermissions(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"create_sale", "read_sale"}, perms)
}

func TestVerifyToken(t *testing.T) {
	router, server := newUserBackend(t)
	calls := 0
	router.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") == "Bearer good" {
			json.NewEncoder(w).Encode(User{ID: 1})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	}).Methods(http.MethodGet)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "good"})
	ok, err := c.VerifyToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	c.SetTokenProvider(staticTokens{token: "bad"})
	ok, err = c.VerifyToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	// Development tokens never hit the network.
	before := calls
	c.SetTokenProvider(staticTokens{token: auth.DevTokenPrefix + "admin"})
	ok, err = c.VerifyToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, before, calls)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", "http://127.0.0.1:1", nil)
	_, err := c.Register(context.Background(), RegisterRequest{
		Username: "new",
		Password: "pw",
		Role:     auth.Role("superuser"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestUsersPagination(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/auth/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("skip"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]User{{ID: 11, Username: "u11"}})
	}).Methods(http.MethodGet)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	users, err := c.Users(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(11), users[0].ID)
}

func TestCreateSale(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/sales/", func(w http.ResponseWriter, r *http.Request) {
		var req SaleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		json.NewEncoder(w).Encode(Sale{ID: 1, TotalAmount: req.Items[0].TotalPrice})
	}).Methods(http.MethodPost)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	sale, err := c.CreateSale(context.Background(), SaleRequest{
		Items:         []SaleItem{{ProductID: 3, Quantity: 2, UnitPrice: 5, TotalPrice: 10}},
		BranchID:      1,
		UserID:        2,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sale.ID)
	assert.Equal(t, 10.0, sale.TotalAmount)

	_, err = c.CreateSale(context.Background(), SaleRequest{})
	require.Error(t, err)
}

func TestProductLifecycle(t *testing.T) {
	router, server := newUserBackend(t)
	router.HandleFunc("/api/v1/inventory/", func(w http.ResponseWriter, r *http.Request) {
		var req ProductRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(Product{ID: 4, Name: req.Name, SKU: req.SKU, Price: req.Price})
	}).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/inventory/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(Product{ID: 4, Name: "Coffee"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}).Methods(http.MethodGet, http.MethodDelete)

	c := newTestClient(t, server.URL, server.URL, staticTokens{token: "abc"})

	created, err := c.CreateProduct(context.Background(), ProductRequest{Name: "Coffee", SKU: "SKU-1", Price: 3.5})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	got, err := c.Product(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", got.Name)

	require.NoError(t, c.DeleteProduct(context.Background(), 4))
}

func TestErrorDetailParsing(t *testing.T) {
	assert.Equal(t, "User not found", errorDetail([]byte(`{"detail":"User not found"}`)))
	assert.Equal(t, "boom", errorDetail([]byte(`{"error":"boom"}`)))
	assert.Equal(t, "plain text", errorDetail([]byte("  plain text\n")))
	assert.Equal(t, "", errorDetail(nil))
}
