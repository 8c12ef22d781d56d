package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Utkkku/nazenin/internal/shop"
	"github.com/Utkkku/nazenin/internal/state"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// DefaultCheckoutDelay is the simulated processing wait before a submitted
// checkout flips to success and the cart empties. It exists so the UI can
// show a processing state; no settlement happens behind it.
const DefaultCheckoutDelay = 2 * time.Second

const shopSessionName = "nazenin-session"

// ShopHandler serves the storefront API: catalog browsing, the per-session
// cart and checkout.
type ShopHandler struct {
	Engine        *state.Engine
	Carts         *CartStore
	SessionStore  *sessions.CookieStore
	CheckoutDelay time.Duration
}

func (h *ShopHandler) delay() time.Duration {
	if h.CheckoutDelay > 0 {
		return h.CheckoutDelay
	}
	return DefaultCheckoutDelay
}

// cartID finds or mints the shopper's cart identity.
func (h *ShopHandler) cartID(w http.ResponseWriter, r *http.Request) string {
	session, _ := h.SessionStore.Get(r, shopSessionName)
	id, ok := session.Values["cart_id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		session.Values["cart_id"] = id
		session.Save(r, w)
	}
	return id
}

// ListProducts handles GET /api/products?color=&sort=&view=
// Filtering and sorting are display-side concerns applied here, never to the
// loaded collections themselves.
func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	color := r.URL.Query().Get("color")
	if color == "" {
		color = shop.ColorAll
	}
	option := shop.SortOption(r.URL.Query().Get("sort"))
	if option == "" {
		option = shop.SortDefault
	}

	result := shop.FilterAndSort(h.Engine.Products(), color, option)
	if r.URL.Query().Get("view") == "home" {
		result = shop.HomePick(result)
	}
	WriteJSON(w, http.StatusOK, result)
}

// GetCart handles GET /api/cart
func (h *ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.Carts.Get(h.cartID(w, r))
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": cart,
		"total": shop.CartTotal(cart),
	})
}

// AddCartItem handles POST /api/cart/items {"productId": n}
func (h *ShopHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var found bool
	for _, p := range h.Engine.Products() {
		if p.ID == req.ProductID {
			id := h.cartID(w, r)
			h.Carts.Set(id, shop.AddToCart(h.Carts.Get(id), p))
			found = true
			break
		}
	}
	if !found {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	cart := h.Carts.Get(h.cartID(w, r))
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": cart,
		"total": shop.CartTotal(cart),
	})
}

// UpdateCartQuantity handles POST /api/cart/items/{id}/quantity {"delta": n}
func (h *ShopHandler) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := h.cartID(w, r)
	cart := shop.UpdateQuantity(h.Carts.Get(id), productID, req.Delta)
	h.Carts.Set(id, cart)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": cart,
		"total": shop.CartTotal(cart),
	})
}

// Checkout handles POST /api/checkout. Required fields are validated at this
// boundary; the order itself is always recorded, at least locally, and the
// cart empties once the simulated processing delay elapses.
func (h *ShopHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if req.Address == "" {
		WriteError(w, http.StatusBadRequest, "Address is required")
		return
	}

	id := h.cartID(w, r)
	cart := h.Carts.Get(id)
	if len(cart) == 0 {
		WriteError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	order := shop.BuildOrder(cart, shop.CustomerInfo{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		Note:    req.Note,
	}, time.Now())
	order = h.Engine.AddOrder(r.Context(), order)

	h.Carts.SetStatus(id, CheckoutProcessing)
	go func(cartID string, wait time.Duration) {
		time.Sleep(wait)
		h.Carts.Clear(cartID)
		h.Carts.SetStatus(cartID, CheckoutSuccess)
	}(id, h.delay())

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"orderId": order.ID,
		"status":  CheckoutProcessing,
	})
}

// CheckoutStatus handles GET /api/checkout/status
func (h *ShopHandler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": h.Carts.Status(h.cartID(w, r)),
	})
}

// ResetCheckout handles POST /api/checkout/reset, returning the session to
// idle after the success screen is dismissed.
func (h *ShopHandler) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	h.Carts.SetStatus(h.cartID(w, r), CheckoutIdle)
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": CheckoutIdle})
}

// Events handles GET /api/events: a server-sent event stream that pings
// whenever catalog or order state changes, so the view can refetch.
func (h *ShopHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.Engine.Watch()
	defer h.Engine.Unwatch(ch)

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	fmt.Fprint(w, "event: change\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			fmt.Fprint(w, "event: change\ndata: {}\n\n")
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
