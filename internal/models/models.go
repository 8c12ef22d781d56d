package models

import (
	"time"
)

// Color is the fixed palette products are tagged with for filtering.
type Color string

const (
	ColorWhite Color = "white"
	ColorBrown Color = "brown"
	ColorGreen Color = "green"
	ColorPink  Color = "pink"
)

func (c Color) IsValid() bool {
	switch c {
	case ColorWhite, ColorBrown, ColorGreen, ColorPink:
		return true
	}
	return false
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"` // URL or embedded data blob
	Description string  `json:"description"`
	Color       Color   `json:"color"`
}

// CartItem is a product plus how many of it sit in the cart.
// Quantity never goes below 1.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
)

type Order struct {
	ID           int64       `json:"id"`
	Date         time.Time   `json:"date"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Address      string      `json:"address"`
	Total        float64     `json:"total"`
	Note         string      `json:"note,omitempty"`
	Status       OrderStatus `json:"status"`
}
