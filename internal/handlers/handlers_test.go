package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Utkkku/nazenin/internal/models"
	"github.com/Utkkku/nazenin/internal/state"
	"github.com/Utkkku/nazenin/internal/store"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	ts     *httptest.Server
	client *http.Client
	engine *state.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	local, err := store.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, local.InitSchema())
	t.Cleanup(func() { local.Close() })

	engine := state.NewEngine(local, nil)
	engine.Load(context.Background())

	sessionStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	carts := NewCartStore()

	shopHandler := &ShopHandler{
		Engine:        engine,
		Carts:         carts,
		SessionStore:  sessionStore,
		CheckoutDelay: 30 * time.Millisecond,
	}
	adminHandler := &AdminHandler{
		Engine:       engine,
		SessionStore: sessionStore,
		Username:     "juliette",
		Password:     "atelier-secret",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", shopHandler.ListProducts)
	mux.HandleFunc("GET /api/cart", shopHandler.GetCart)
	mux.HandleFunc("POST /api/cart/items", shopHandler.AddCartItem)
	mux.HandleFunc("POST /api/cart/items/{id}/quantity", shopHandler.UpdateCartQuantity)
	mux.HandleFunc("POST /api/checkout", shopHandler.Checkout)
	mux.HandleFunc("GET /api/checkout/status", shopHandler.CheckoutStatus)
	mux.HandleFunc("POST /api/checkout/reset", shopHandler.ResetCheckout)
	mux.HandleFunc("POST /api/admin/login", adminHandler.Login)
	mux.HandleFunc("POST /api/admin/logout", adminHandler.Logout)
	mux.HandleFunc("GET /api/admin/summary", adminHandler.RequireAdmin(adminHandler.Summary))
	mux.HandleFunc("POST /api/admin/products", adminHandler.RequireAdmin(adminHandler.CreateProduct))
	mux.HandleFunc("DELETE /api/admin/products/{id}", adminHandler.RequireAdmin(adminHandler.DeleteProduct))
	mux.HandleFunc("GET /api/admin/orders", adminHandler.RequireAdmin(adminHandler.ListOrders))
	mux.HandleFunc("POST /api/admin/orders/{id}/confirm", adminHandler.RequireAdmin(adminHandler.ConfirmOrder))
	mux.HandleFunc("DELETE /api/admin/orders/{id}", adminHandler.RequireAdmin(adminHandler.DeleteOrder))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		ts:     ts,
		client: &http.Client{Jar: jar},
		engine: engine,
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := a.client.Get(a.ts.URL + path)
	require.NoError(t, err)
	return drain(t, resp)
}

func (a *testApp) post(t *testing.T, path string, body any) (*http.Response, []byte) {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := a.client.Post(a.ts.URL+path, "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	return drain(t, resp)
}

func (a *testApp) delete(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, a.ts.URL+path, nil)
	require.NoError(t, err)
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	return drain(t, resp)
}

func drain(t *testing.T, resp *http.Response) (*http.Response, []byte) {
	t.Helper()
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	resp, _ := a.post(t, "/api/admin/login", map[string]string{
		"username": "juliette",
		"password": "atelier-secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListProducts(t *testing.T) {
	app := newTestApp(t)

	t.Run("all products", func(t *testing.T) {
		resp, body := app.get(t, "/api/products")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var products []models.Product
		require.NoError(t, json.Unmarshal(body, &products))
		assert.Len(t, products, 8)
	})

	t.Run("green ascending by price", func(t *testing.T) {
		_, body := app.get(t, "/api/products?color=green&sort=price-asc")
		var products []models.Product
		require.NoError(t, json.Unmarshal(body, &products))
		require.Len(t, products, 2)
		assert.Equal(t, int64(5), products[0].ID) // 1100
		assert.Equal(t, int64(7), products[1].ID) // 1350
	})

	t.Run("home view truncates to four", func(t *testing.T) {
		_, body := app.get(t, "/api/products?view=home")
		var products []models.Product
		require.NoError(t, json.Unmarshal(body, &products))
		assert.Len(t, products, 4)
	})

	t.Run("home truncation applies after filter and sort", func(t *testing.T) {
		resp, body := app.get(t, "/api/products?color=green&sort=price-asc&view=home")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var products []models.Product
		require.NoError(t, json.Unmarshal(body, &products))
		assert.Len(t, products, 2)
	})
}

func TestCartFlow(t *testing.T) {
	app := newTestApp(t)

	type cartResponse struct {
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
	}

	resp, body := app.post(t, "/api/cart/items", map[string]int64{"productId": 2}) // 1450
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = app.post(t, "/api/cart/items", map[string]int64{"productId": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart cartResponse
	require.NoError(t, json.Unmarshal(body, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2900.0, cart.Total)

	resp, body = app.post(t, "/api/cart/items", map[string]int64{"productId": 4}) // 950
	require.NoError(t, json.Unmarshal(body, &cart))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3850.0, cart.Total)

	// Quantity can never be driven below 1.
	resp, body = app.post(t, "/api/cart/items/4/quantity", map[string]int{"delta": -1000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Equal(t, 1, cart.Items[1].Quantity)

	resp, _ = app.post(t, "/api/cart/items", map[string]int64{"productId": 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckoutValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing name", body: map[string]string{"email": "a@b.c", "address": "x"}},
		{name: "missing email", body: map[string]string{"name": "A", "address": "x"}},
		{name: "missing address", body: map[string]string{"name": "A", "email": "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.post(t, "/api/checkout", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	t.Run("empty cart", func(t *testing.T) {
		resp, _ := app.post(t, "/api/checkout", map[string]string{"name": "A", "email": "a@b.c", "address": "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, app.engine.Orders(), "no order may be created from a rejected checkout")
	})
}

func TestCheckoutFlow(t *testing.T) {
	app := newTestApp(t)

	app.post(t, "/api/cart/items", map[string]int64{"productId": 2}) // 1450
	app.post(t, "/api/cart/items", map[string]int64{"productId": 2})
	app.post(t, "/api/cart/items", map[string]int64{"productId": 4}) // 950

	resp, body := app.post(t, "/api/checkout", map[string]string{
		"name": "Ayşe", "email": "ayse@example.com", "address": "İstanbul",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submitted struct {
		OrderID int64  `json:"orderId"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &submitted))
	assert.Equal(t, "processing", submitted.Status)

	// Exactly one pending order, total frozen at submission time.
	orders := app.engine.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, submitted.OrderID, orders[0].ID)
	assert.Equal(t, models.OrderPending, orders[0].Status)
	assert.Equal(t, 3850.0, orders[0].Total)

	// After the simulated delay the cart empties and the state flips.
	require.Eventually(t, func() bool {
		_, statusBody := app.get(t, "/api/checkout/status")
		var st struct {
			Status string `json:"status"`
		}
		json.Unmarshal(statusBody, &st)
		return st.Status == "success"
	}, 2*time.Second, 10*time.Millisecond)

	_, body = app.get(t, "/api/cart")
	var cart struct {
		Items []models.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Empty(t, cart.Items)

	resp, body = app.post(t, "/api/checkout/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = app.get(t, "/api/checkout/status")
	assert.Contains(t, string(body), "idle")
}

func TestAdminAuth(t *testing.T) {
	app := newTestApp(t)

	t.Run("gated routes reject anonymous callers", func(t *testing.T) {
		resp, _ := app.get(t, "/api/admin/orders")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong credentials rejected", func(t *testing.T) {
		resp, body := app.post(t, "/api/admin/login", map[string]string{"username": "juliette", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, string(body), "Invalid username or password")
	})

	t.Run("valid login opens the gate, logout closes it", func(t *testing.T) {
		app.login(t)
		resp, _ := app.get(t, "/api/admin/orders")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		app.post(t, "/api/admin/logout", nil)
		resp, _ = app.get(t, "/api/admin/orders")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAdminLoginWithoutConfiguredCredentials(t *testing.T) {
	app := newTestApp(t)
	// A handler with no credentials configured refuses every login.
	sessionStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	h := &AdminHandler{Engine: app.engine, SessionStore: sessionStore}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader([]byte(`{"username":"a","password":"b"}`)))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestAdminProductManagement(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	t.Run("create assigns next identity", func(t *testing.T) {
		resp, body := app.post(t, "/api/admin/products", map[string]any{
			"name": "Kuru Gül Demeti", "category": "Dried Collection",
			"price": 1200, "color": "pink",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var p models.Product
		require.NoError(t, json.Unmarshal(body, &p))
		assert.Equal(t, int64(9), p.ID)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		resp, _ := app.post(t, "/api/admin/products", map[string]any{"name": "x", "price": -1, "color": "pink"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects unknown color", func(t *testing.T) {
		resp, _ := app.post(t, "/api/admin/products", map[string]any{"name": "x", "price": 1, "color": "mauve"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete removes the product", func(t *testing.T) {
		resp, _ := app.delete(t, "/api/admin/products/9")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		_, body := app.get(t, "/api/products")
		var products []models.Product
		require.NoError(t, json.Unmarshal(body, &products))
		assert.Len(t, products, 8)

		resp, _ = app.delete(t, "/api/admin/products/9")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminOrderManagement(t *testing.T) {
	app := newTestApp(t)

	// Shop a bit and check out to create one order.
	app.post(t, "/api/cart/items", map[string]int64{"productId": 1})
	resp, _ := app.post(t, "/api/checkout", map[string]string{"name": "A", "email": "a@b.c", "address": "x"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	app.login(t)

	_, body := app.get(t, "/api/admin/orders")
	var orders []models.Order
	require.NoError(t, json.Unmarshal(body, &orders))
	require.Len(t, orders, 1)
	orderID := orders[0].ID

	t.Run("confirming an unknown order is a no-op", func(t *testing.T) {
		resp, body := app.post(t, fmt.Sprintf("/api/admin/orders/%d/confirm", orderID+999), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"updated":false`)
	})

	t.Run("confirm transitions pending to confirmed", func(t *testing.T) {
		resp, _ := app.post(t, fmt.Sprintf("/api/admin/orders/%d/confirm", orderID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		_, body := app.get(t, "/api/admin/orders")
		var got []models.Order
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, models.OrderConfirmed, got[0].Status)
	})

	t.Run("summary reflects the books", func(t *testing.T) {
		_, body := app.get(t, "/api/admin/summary")
		var summary struct {
			TotalProducts int     `json:"totalProducts"`
			TotalOrders   int     `json:"totalOrders"`
			PendingOrders int     `json:"pendingOrders"`
			Revenue       float64 `json:"revenue"`
		}
		require.NoError(t, json.Unmarshal(body, &summary))
		assert.Equal(t, 8, summary.TotalProducts)
		assert.Equal(t, 1, summary.TotalOrders)
		assert.Equal(t, 0, summary.PendingOrders)
		assert.Equal(t, 2850.0, summary.Revenue)
	})

	t.Run("delete removes the order", func(t *testing.T) {
		resp, _ := app.delete(t, fmt.Sprintf("/api/admin/orders/%d", orderID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, app.engine.Orders())
	})
}
