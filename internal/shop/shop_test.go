package shop

import (
	"testing"
	"time"

	"github.com/Utkkku/nazenin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price float64, color models.Color) models.Product {
	return models.Product{ID: id, Name: "p", Price: price, Color: color}
}

func TestAddToCartTwiceIncrementsQuantity(t *testing.T) {
	p := product(1, 2850, models.ColorPink)

	cart := AddToCart(nil, p)
	cart = AddToCart(cart, p)

	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, p.ID, cart[0].ID)
}

func TestAddToCartAppendsNewItemsAtEnd(t *testing.T) {
	cart := AddToCart(nil, product(1, 100, models.ColorWhite))
	cart = AddToCart(cart, product(2, 200, models.ColorGreen))
	cart = AddToCart(cart, product(1, 100, models.ColorWhite))

	require.Len(t, cart, 2)
	assert.Equal(t, int64(1), cart[0].ID)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, int64(2), cart[1].ID)
	assert.Equal(t, 1, cart[1].Quantity)
}

func TestAddToCartDoesNotMutateInput(t *testing.T) {
	original := []models.CartItem{{Product: product(1, 100, models.ColorWhite), Quantity: 1}}

	AddToCart(original, product(1, 100, models.ColorWhite))

	assert.Equal(t, 1, original[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		delta     int
		productID int64
		want      int
	}{
		{name: "increment", start: 1, delta: 1, productID: 1, want: 2},
		{name: "decrement", start: 3, delta: -1, productID: 1, want: 2},
		{name: "floor at one", start: 1, delta: -1, productID: 1, want: 1},
		{name: "huge negative delta floors at one", start: 5, delta: -1000, productID: 1, want: 1},
		{name: "unknown product leaves cart unchanged", start: 2, delta: 5, productID: 99, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := []models.CartItem{{Product: product(1, 100, models.ColorWhite), Quantity: tt.start}}
			got := UpdateQuantity(cart, tt.productID, tt.delta)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Quantity)
		})
	}
}

func TestCartTotal(t *testing.T) {
	cart := []models.CartItem{
		{Product: product(1, 1450, models.ColorBrown), Quantity: 2},
		{Product: product(2, 950, models.ColorWhite), Quantity: 1},
	}
	assert.Equal(t, 3850.0, CartTotal(cart))
}

func TestCartTotalEmptyCart(t *testing.T) {
	assert.Equal(t, 0.0, CartTotal(nil))
}

func TestFilterAndSort(t *testing.T) {
	products := []models.Product{
		product(1, 300, models.ColorGreen),
		product(2, 100, models.ColorWhite),
		product(3, 100, models.ColorGreen),
		product(4, 300, models.ColorGreen),
		product(5, 200, models.ColorPink),
	}

	t.Run("color filter keeps relative order", func(t *testing.T) {
		got := FilterAndSort(products, "green", SortDefault)
		require.Len(t, got, 3)
		assert.Equal(t, []int64{1, 3, 4}, ids(got))
	})

	t.Run("green price ascending with stable ties", func(t *testing.T) {
		got := FilterAndSort(products, "green", SortPriceAsc)
		assert.Equal(t, []int64{3, 1, 4}, ids(got))
	})

	t.Run("price descending", func(t *testing.T) {
		got := FilterAndSort(products, ColorAll, SortPriceDesc)
		assert.Equal(t, []int64{1, 4, 5, 2, 3}, ids(got))
	})

	t.Run("default sort reorders nothing", func(t *testing.T) {
		got := FilterAndSort(products, ColorAll, SortDefault)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got))
	})

	t.Run("no matches yields empty result", func(t *testing.T) {
		got := FilterAndSort(products, "brown", SortDefault)
		assert.Empty(t, got)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		FilterAndSort(products, ColorAll, SortPriceAsc)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(products))
	})
}

func TestHomePick(t *testing.T) {
	products := models.DefaultProducts()
	got := HomePick(products)
	require.Len(t, got, HomeLimit)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(got))

	short := products[:2]
	assert.Len(t, HomePick(short), 2)
}

func TestBuildOrder(t *testing.T) {
	cart := []models.CartItem{
		{Product: product(1, 1450, models.ColorBrown), Quantity: 2},
		{Product: product(2, 950, models.ColorWhite), Quantity: 1},
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	order := BuildOrder(cart, CustomerInfo{
		Name:    "Ayşe",
		Email:   "ayse@example.com",
		Address: "İstanbul",
		Note:    "gift wrap",
	}, now)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 3850.0, order.Total)
	assert.Equal(t, now, order.Date)
	assert.Equal(t, "Ayşe", order.CustomerName)
	assert.Equal(t, "gift wrap", order.Note)
	assert.Zero(t, order.ID, "identity is the engine's job")
}

func ids(products []models.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
