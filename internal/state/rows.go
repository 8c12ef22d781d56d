package state

import (
	"time"

	"github.com/Utkkku/nazenin/internal/models"
)

// Wire shapes for the remote tables. Column names are snake_case on the
// remote side, so the app models get mapped here instead of reusing their
// JSON tags.

type productRow struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
}

type orderRow struct {
	ID           int64   `json:"id"`
	CustomerName string  `json:"customer_name"`
	Email        string  `json:"email"`
	Address      string  `json:"address"`
	Total        float64 `json:"total"`
	Note         *string `json:"note"`
	Status       string  `json:"status"`
	Date         string  `json:"date"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

func productFromRow(r productRow) models.Product {
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Image:       r.Image,
		Description: r.Description,
		Color:       models.Color(r.Color),
	}
}

func productToRow(p models.Product) productRow {
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		Color:       string(p.Color),
	}
}

func orderFromRow(r orderRow) models.Order {
	o := models.Order{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		Email:        r.Email,
		Address:      r.Address,
		Total:        r.Total,
		Status:       models.OrderStatus(r.Status),
	}
	if r.Note != nil {
		o.Note = *r.Note
	}
	// The date column holds what the client recorded at submission; rows
	// inserted by other means fall back to the server-assigned timestamp.
	when := r.Date
	if when == "" {
		when = r.CreatedAt
	}
	if t, err := time.Parse(time.RFC3339, when); err == nil {
		o.Date = t
	}
	return o
}

func orderToRow(o models.Order) orderRow {
	r := orderRow{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		Address:      o.Address,
		Total:        o.Total,
		Status:       string(o.Status),
		Date:         o.Date.UTC().Format(time.RFC3339),
	}
	if o.Note != "" {
		note := o.Note
		r.Note = &note
	}
	return r
}
