// Package shop holds the pure state-transition functions over products, cart
// line items and orders. Nothing in here touches a store or returns an error;
// persistence is the sync engine's job.
package shop

import (
	"sort"
	"time"

	"github.com/Utkkku/nazenin/internal/models"
)

// HomeLimit is how many products the home page teaser shows.
const HomeLimit = 4

type SortOption string

const (
	SortDefault   SortOption = "default"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
)

// ColorAll disables color filtering.
const ColorAll = "all"

// AddToCart returns a new cart with product added. An already-present product
// gets its quantity bumped instead of a duplicate line; new products append
// at the end.
func AddToCart(cart []models.CartItem, product models.Product) []models.CartItem {
	out := make([]models.CartItem, len(cart))
	copy(out, cart)
	for i := range out {
		if out[i].ID == product.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, models.CartItem{Product: product, Quantity: 1})
}

// UpdateQuantity adjusts the matching line by delta, flooring at 1. Decrements
// on a quantity-1 line leave it at 1 rather than removing it. Unknown product
// IDs leave the cart unchanged.
func UpdateQuantity(cart []models.CartItem, productID int64, delta int) []models.CartItem {
	out := make([]models.CartItem, len(cart))
	copy(out, cart)
	for i := range out {
		if out[i].ID == productID {
			q := out[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			out[i].Quantity = q
		}
	}
	return out
}

// CartTotal sums price times quantity over the cart.
func CartTotal(cart []models.CartItem) float64 {
	var total float64
	for _, item := range cart {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// FilterAndSort narrows products to the given color (unless "all") and then
// orders them by price if asked. Both steps are stable: ties and filtered
// results keep their original relative order. SortDefault reorders nothing.
func FilterAndSort(products []models.Product, color string, option SortOption) []models.Product {
	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if color == ColorAll || color == "" || string(p.Color) == color {
			result = append(result, p)
		}
	}

	switch option {
	case SortPriceAsc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case SortPriceDesc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	}
	return result
}

// HomePick truncates a filtered+sorted product list to the home page teaser.
func HomePick(products []models.Product) []models.Product {
	if len(products) > HomeLimit {
		return products[:HomeLimit]
	}
	return products
}

// CustomerInfo is what the checkout form collects.
type CustomerInfo struct {
	Name    string
	Email   string
	Address string
	Note    string
}

// BuildOrder snapshots the cart into a pending order. The total is fixed at
// submission time; the order never recomputes it. The identity is assigned
// later by the sync engine.
func BuildOrder(cart []models.CartItem, info CustomerInfo, now time.Time) models.Order {
	return models.Order{
		Date:         now,
		CustomerName: info.Name,
		Email:        info.Email,
		Address:      info.Address,
		Total:        CartTotal(cart),
		Note:         info.Note,
		Status:       models.OrderPending,
	}
}
