// Package state owns the in-memory application state and keeps it eventually
// consistent with the authoritative backend: the remote store when it is
// configured and reachable, the local snapshot store otherwise. Remote
// failures never surface past this package; every operation degrades to the
// local store, and local failures degrade to the built-in defaults.
package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Utkkku/nazenin/internal/models"
	"github.com/Utkkku/nazenin/internal/remote"
	"github.com/Utkkku/nazenin/internal/store"
)

// Local snapshot keys, one whole JSON array per key.
const (
	SnapshotProductsKey = "nazenin_products"
	SnapshotOrdersKey   = "nazenin_orders"
)

const (
	productsTable = "products"
	ordersTable   = "orders"
)

// Engine is the synchronization engine. It is the single writer for both
// collections; readers get copies. Concurrent mutations and reloads resolve
// to last-write-wins, which is the accepted consistency model here.
type Engine struct {
	mu       sync.RWMutex
	products []models.Product
	orders   []models.Order

	local  *store.Store
	remote *remote.Client

	watchMu  sync.Mutex
	watchers map[chan struct{}]struct{}

	subs []*remote.Subscription
}

// NewEngine wires the engine to its stores. rc may be nil: that is the
// supported local-only mode, not an error.
func NewEngine(local *store.Store, rc *remote.Client) *Engine {
	return &Engine{
		local:    local,
		remote:   rc,
		watchers: make(map[chan struct{}]struct{}),
	}
}

// Load fetches both collections. Called once at startup and again from the
// realtime change feed.
func (e *Engine) Load(ctx context.Context) {
	e.LoadCatalog(ctx)
	e.LoadOrders(ctx)
}

// LoadCatalog refreshes the in-memory catalog from the authoritative store.
// Preference order: remote, local snapshot, built-in defaults. A remote fetch
// that succeeds with zero rows means "deliberately empty" and is backed by the
// defaults rather than silently clearing the catalog.
func (e *Engine) LoadCatalog(ctx context.Context) {
	if e.remote.Configured() {
		var rows []productRow
		err := e.remote.Select(ctx, productsTable, "id.asc", &rows)
		if err == nil {
			if len(rows) == 0 {
				e.setProducts(models.DefaultProducts())
				return
			}
			products := make([]models.Product, 0, len(rows))
			for _, r := range rows {
				products = append(products, productFromRow(r))
			}
			e.setProducts(products)
			return
		}
		slog.Error("Remote catalog load failed, falling back to local snapshot", "error", err)
	}
	e.setProducts(e.localProducts())
}

// LoadOrders refreshes the order list, newest first (remote ordering is
// authoritative; no client-side re-sort).
func (e *Engine) LoadOrders(ctx context.Context) {
	if e.remote.Configured() {
		var rows []orderRow
		err := e.remote.Select(ctx, ordersTable, "created_at.desc", &rows)
		if err == nil {
			orders := make([]models.Order, 0, len(rows))
			for _, r := range rows {
				orders = append(orders, orderFromRow(r))
			}
			e.setOrders(orders)
			return
		}
		slog.Error("Remote orders load failed, falling back to local snapshot", "error", err)
	}
	e.setOrders(e.localOrders())
}

func (e *Engine) localProducts() []models.Product {
	raw, err := e.local.Get(SnapshotProductsKey)
	if err != nil {
		slog.Warn("Local catalog snapshot unreadable, using defaults", "error", err)
		return models.DefaultProducts()
	}
	if raw == nil {
		return models.DefaultProducts()
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil || len(products) == 0 {
		return models.DefaultProducts()
	}
	return products
}

func (e *Engine) localOrders() []models.Order {
	raw, err := e.local.Get(SnapshotOrdersKey)
	if err != nil {
		slog.Warn("Local orders snapshot unreadable, starting empty", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil
	}
	return orders
}

// PersistCatalog writes the in-memory catalog to the authoritative store.
// Empty collections are never persisted: an empty write right after startup
// must not clobber a previously saved non-empty state.
func (e *Engine) PersistCatalog(ctx context.Context) {
	products := e.Products()
	if len(products) == 0 {
		return
	}
	if e.remote.Configured() {
		err := e.pushCatalog(ctx, products)
		if err == nil {
			return
		}
		slog.Error("Remote catalog save failed, falling back to local snapshot", "error", err)
	}
	e.writeSnapshot(SnapshotProductsKey, products)
}

// pushCatalog reconciles the remote table with the in-memory set: rows whose
// identity is no longer present get bulk-deleted, then every current row is
// upserted. The delete-diff costs an extra round trip per save; accepted.
func (e *Engine) pushCatalog(ctx context.Context, products []models.Product) error {
	existing, err := e.remote.SelectIDs(ctx, productsTable)
	if err != nil {
		return err
	}
	current := make(map[int64]bool, len(products))
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		current[p.ID] = true
		rows = append(rows, productToRow(p))
	}
	var stale []int64
	for _, id := range existing {
		if !current[id] {
			stale = append(stale, id)
		}
	}
	if err := e.remote.DeleteIn(ctx, productsTable, "id", stale); err != nil {
		return err
	}
	return e.remote.Upsert(ctx, productsTable, rows)
}

// PersistOrders mirrors PersistCatalog for the order list, including the
// delete-diff so admin-deleted orders do not resurrect on the next reload.
func (e *Engine) PersistOrders(ctx context.Context) {
	orders := e.Orders()
	if len(orders) == 0 {
		return
	}
	if e.remote.Configured() {
		err := e.pushOrders(ctx, orders)
		if err == nil {
			return
		}
		slog.Error("Remote orders save failed, falling back to local snapshot", "error", err)
	}
	e.writeSnapshot(SnapshotOrdersKey, orders)
}

func (e *Engine) pushOrders(ctx context.Context, orders []models.Order) error {
	existing, err := e.remote.SelectIDs(ctx, ordersTable)
	if err != nil {
		return err
	}
	current := make(map[int64]bool, len(orders))
	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		current[o.ID] = true
		rows = append(rows, orderToRow(o))
	}
	var stale []int64
	for _, id := range existing {
		if !current[id] {
			stale = append(stale, id)
		}
	}
	if err := e.remote.DeleteIn(ctx, ordersTable, "id", stale); err != nil {
		return err
	}
	return e.remote.Upsert(ctx, ordersTable, rows)
}

func (e *Engine) writeSnapshot(key string, v any) {
	encoded, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Snapshot encode failed", "key", key, "error", err)
		return
	}
	if err := e.local.Set(key, encoded); err != nil {
		// Quota, corruption, unavailable: swallowed, never fatal.
		slog.Warn("Local snapshot write failed", "key", key, "error", err)
	}
}

// Products returns a copy of the in-memory catalog.
func (e *Engine) Products() []models.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Product, len(e.products))
	copy(out, e.products)
	return out
}

// Orders returns a copy of the in-memory order list.
func (e *Engine) Orders() []models.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Order, len(e.orders))
	copy(out, e.orders)
	return out
}

func (e *Engine) setProducts(products []models.Product) {
	e.mu.Lock()
	e.products = products
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) setOrders(orders []models.Order) {
	e.mu.Lock()
	e.orders = orders
	e.mu.Unlock()
	e.notify()
}

// AddProduct assigns the next free identity (max existing + 1) and persists
// the grown catalog. Returns the product with its identity filled in.
func (e *Engine) AddProduct(ctx context.Context, p models.Product) models.Product {
	e.mu.Lock()
	var next int64 = 1
	for _, existing := range e.products {
		if existing.ID >= next {
			next = existing.ID + 1
		}
	}
	p.ID = next
	e.products = append(e.products, p)
	e.mu.Unlock()

	e.PersistCatalog(ctx)
	e.notify()
	return p
}

// DeleteProduct removes the product from memory and from the authoritative
// store, so a later load cannot resurrect it. Unknown ids are a no-op.
func (e *Engine) DeleteProduct(ctx context.Context, id int64) bool {
	e.mu.Lock()
	kept := e.products[:0:0]
	for _, p := range e.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	changed := len(kept) != len(e.products)
	e.products = kept
	e.mu.Unlock()

	if !changed {
		return false
	}
	e.PersistCatalog(ctx)
	e.notify()
	return true
}

// AddOrder prepends the order (newest first), assigns its identity and
// persists. The identity is the submission timestamp in milliseconds, bumped
// past any existing order so two submissions in the same millisecond cannot
// collide.
func (e *Engine) AddOrder(ctx context.Context, o models.Order) models.Order {
	e.mu.Lock()
	id := o.Date.UnixMilli()
	if id <= 0 {
		id = time.Now().UnixMilli()
	}
	for _, existing := range e.orders {
		if existing.ID >= id {
			id = existing.ID + 1
		}
	}
	o.ID = id
	e.orders = append([]models.Order{o}, e.orders...)
	e.mu.Unlock()

	// The new row is inserted on its own first; the full persist below then
	// upserts it again by identity, which converges to a single row. On any
	// remote failure the persist falls back to the local snapshot, so the
	// order is always recorded at least locally.
	if e.remote.Configured() {
		if err := e.remote.Insert(ctx, ordersTable, orderToRow(o)); err != nil {
			slog.Error("Remote order insert failed", "order_id", o.ID, "error", err)
		}
	}
	e.PersistOrders(ctx)
	e.notify()
	return o
}

// ConfirmOrder transitions pending to confirmed, leaving every other field
// alone. Unknown identities are a no-op.
func (e *Engine) ConfirmOrder(ctx context.Context, id int64) bool {
	e.mu.Lock()
	found := false
	for i := range e.orders {
		if e.orders[i].ID == id {
			e.orders[i].Status = models.OrderConfirmed
			found = true
			break
		}
	}
	e.mu.Unlock()

	if !found {
		return false
	}
	e.PersistOrders(ctx)
	e.notify()
	return true
}

// DeleteOrder removes the order from memory and the authoritative store.
func (e *Engine) DeleteOrder(ctx context.Context, id int64) bool {
	e.mu.Lock()
	kept := e.orders[:0:0]
	for _, o := range e.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	changed := len(kept) != len(e.orders)
	e.orders = kept
	e.mu.Unlock()

	if !changed {
		return false
	}
	e.PersistOrders(ctx)
	e.notify()
	return true
}

// StartRealtime subscribes to the remote change feed for both tables. Any
// event triggers a full reload of the affected collection; reloads are
// idempotent and the last one to complete wins. No-op in local-only mode.
func (e *Engine) StartRealtime() {
	if !e.remote.Configured() {
		return
	}
	reload := func(load func(context.Context)) func() {
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			load(ctx)
		}
	}
	if sub, err := e.remote.Subscribe(productsTable, reload(e.LoadCatalog)); err != nil {
		slog.Error("Products change subscription failed", "error", err)
	} else {
		e.subs = append(e.subs, sub)
	}
	if sub, err := e.remote.Subscribe(ordersTable, reload(e.LoadOrders)); err != nil {
		slog.Error("Orders change subscription failed", "error", err)
	} else {
		e.subs = append(e.subs, sub)
	}
}

// Close tears down the change subscriptions.
func (e *Engine) Close() {
	for _, sub := range e.subs {
		sub.Unsubscribe()
	}
	e.subs = nil
}

// Watch hands out a coalescing notification channel that receives after every
// state change. Callers must release it with Unwatch.
func (e *Engine) Watch() chan struct{} {
	ch := make(chan struct{}, 1)
	e.watchMu.Lock()
	e.watchers[ch] = struct{}{}
	e.watchMu.Unlock()
	return ch
}

func (e *Engine) Unwatch(ch chan struct{}) {
	e.watchMu.Lock()
	delete(e.watchers, ch)
	e.watchMu.Unlock()
}

func (e *Engine) notify() {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()
	for ch := range e.watchers {
		select {
		case ch <- struct{}{}:
		default:
			// Watcher already has a pending notification.
		}
	}
}
