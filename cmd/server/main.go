package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Utkkku/nazenin/internal/config"
	"github.com/Utkkku/nazenin/internal/handlers"
	"github.com/Utkkku/nazenin/internal/remote"
	"github.com/Utkkku/nazenin/internal/state"
	"github.com/Utkkku/nazenin/internal/store"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open local store", "error", err)
		os.Exit(1)
	}
	if err := db.InitSchema(); err != nil {
		slog.Error("Failed to initialize local store schema", "error", err)
		os.Exit(1)
	}

	var rc *remote.Client
	if cfg.RemoteConfigured() {
		rc = remote.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}

	engine := state.NewEngine(db, rc)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	engine.Load(loadCtx)
	cancelLoad()
	engine.StartRealtime()

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true

	carts := handlers.NewCartStore()
	shopHandler := &handlers.ShopHandler{
		Engine:       engine,
		Carts:        carts,
		SessionStore: sessionStore,
	}
	adminHandler := &handlers.AdminHandler{
		Engine:       engine,
		SessionStore: sessionStore,
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
	}

	mux := http.NewServeMux()

	// Storefront
	mux.HandleFunc("GET /api/products", shopHandler.ListProducts)
	mux.HandleFunc("GET /api/cart", shopHandler.GetCart)
	mux.HandleFunc("POST /api/cart/items", shopHandler.AddCartItem)
	mux.HandleFunc("POST /api/cart/items/{id}/quantity", shopHandler.UpdateCartQuantity)
	mux.HandleFunc("POST /api/checkout", shopHandler.Checkout)
	mux.HandleFunc("GET /api/checkout/status", shopHandler.CheckoutStatus)
	mux.HandleFunc("POST /api/checkout/reset", shopHandler.ResetCheckout)
	mux.HandleFunc("GET /api/events", shopHandler.Events)

	// Admin
	mux.HandleFunc("POST /api/admin/login", adminHandler.Login)
	mux.HandleFunc("POST /api/admin/logout", adminHandler.Logout)
	mux.HandleFunc("GET /api/admin/summary", adminHandler.RequireAdmin(adminHandler.Summary))
	mux.HandleFunc("POST /api/admin/products", adminHandler.RequireAdmin(adminHandler.CreateProduct))
	mux.HandleFunc("DELETE /api/admin/products/{id}", adminHandler.RequireAdmin(adminHandler.DeleteProduct))
	mux.HandleFunc("GET /api/admin/orders", adminHandler.RequireAdmin(adminHandler.ListOrders))
	mux.HandleFunc("POST /api/admin/orders/{id}/confirm", adminHandler.RequireAdmin(adminHandler.ConfirmOrder))
	mux.HandleFunc("DELETE /api/admin/orders/{id}", adminHandler.RequireAdmin(adminHandler.DeleteOrder))

	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	// No WriteTimeout: the /api/events stream is long-lived and a server-wide
	// write deadline would sever it.
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handlers.RequestLogger(corsMiddleware(mux)),
		ReadTimeout: cfg.ReadTimeout,
		IdleTimeout: cfg.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	engine.Close()
	if err := db.Close(); err != nil {
		slog.Error("Failed to close local store", "error", err)
	}

	slog.Info("Server exited gracefully.")
}
