package product

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidSKU      = errors.New("sku is required")
	ErrStockBelowZero  = errors.New("stock adjustment would go below zero")
)

// Product groups the purchasable variants of one catalog entry.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	Variants    []Variant `json:"variants,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Variant is a concrete purchasable SKU (size/colour combination) carrying its
// own price and available stock.
type Variant struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}
