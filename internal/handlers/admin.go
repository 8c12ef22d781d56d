package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Utkkku/nazenin/internal/models"
	"github.com/Utkkku/nazenin/internal/state"
	"github.com/gorilla/sessions"
)

const adminSessionName = "admin-session"

// AdminHandler serves the password-gated management API. The credential check
// is a plaintext comparison against configuration values. No lockout, no rate
// limiting, no hashing: a known weakness of this system, kept deliberately.
type AdminHandler struct {
	Engine       *state.Engine
	SessionStore *sessions.CookieStore
	Username     string
	Password     string
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if h.Username == "" || h.Password == "" {
		WriteError(w, http.StatusUnauthorized, "Admin credentials are not configured")
		return
	}
	if req.Username != h.Username || req.Password != h.Password {
		slog.Info("Admin login rejected", "username", req.Username)
		WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	session.Values["authenticated"] = true
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	slog.Info("Admin login successful")
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	session.Values["authenticated"] = false
	session.Options.MaxAge = -1 // Expire immediately
	session.Save(r, w)
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RequireAdmin ensures the caller holds an authenticated admin session.
func (h *AdminHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, adminSessionName)
		if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
			WriteError(w, http.StatusUnauthorized, "You must be logged in to access this resource")
			return
		}
		next(w, r)
	}
}

// Summary handles GET /api/admin/summary: the dashboard counters.
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	orders := h.Engine.Orders()
	var pending int
	var revenue float64
	for _, o := range orders {
		if o.Status == models.OrderPending {
			pending++
		} else {
			revenue += o.Total
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"totalProducts": len(h.Engine.Products()),
		"totalOrders":   len(orders),
		"pendingOrders": pending,
		"revenue":       revenue,
	})
}

// CreateProduct handles POST /api/admin/products. The identity is assigned by
// the engine (next free id); products are only ever created and deleted, never
// edited in place.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Category    string  `json:"category"`
		Price       float64 `json:"price"`
		Image       string  `json:"image"`
		Description string  `json:"description"`
		Color       string  `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Price < 0 {
		WriteError(w, http.StatusBadRequest, "Price must not be negative")
		return
	}
	color := models.Color(req.Color)
	if req.Color == "" {
		color = models.ColorWhite
	} else if !color.IsValid() {
		WriteError(w, http.StatusBadRequest, "Invalid color")
		return
	}

	product := h.Engine.AddProduct(r.Context(), models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		Color:       color,
	})
	WriteJSON(w, http.StatusCreated, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	if !h.Engine.DeleteProduct(r.Context(), id) {
		WriteError(w, http.StatusNotFound, "Product not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListOrders handles GET /api/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Engine.Orders())
}

// ConfirmOrder handles POST /api/admin/orders/{id}/confirm. Confirming an
// unknown identity is a no-op, reported in the response rather than failed.
func (h *AdminHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	updated := h.Engine.ConfirmOrder(r.Context(), id)
	WriteJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

// DeleteOrder handles DELETE /api/admin/orders/{id}
func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	if !h.Engine.DeleteOrder(r.Context(), id) {
		WriteError(w, http.StatusNotFound, "Order not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
