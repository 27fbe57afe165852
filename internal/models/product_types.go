package models

import (
	"time"
)

// Product is the model for the 'products' table.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"` // Base price, default for new variations
	ImageURL    string  `json:"imageUrl" db:"image_url"`
	Category    string  `json:"category" db:"category"`
	Brand       string  `json:"brand" db:"brand"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (Not in DB table, populated manually)
	Variations []Variation `json:"variations" db:"-"`
}

// Variation is the model for the 'product_variations' table.
// Label is computed once by the matrix generator and never re-derived.
type Variation struct {
	ID        int64   `json:"id" db:"id"` // 0 until persisted
	ProductID int64   `json:"productId" db:"product_id"`
	Label     string  `json:"label" db:"label"`
	Price     float64 `json:"price" db:"price"`
	Stock     int     `json:"stock" db:"stock_count"`
}
