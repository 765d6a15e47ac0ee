package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta de un producto con su stock inicial.
type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=100"`
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	Category          string          `json:"category" validate:"max=100"`
	Price             decimal.Decimal `json:"price"`
	InitialStock      int             `json:"initial_stock" validate:"min=0"`
	LowStockThreshold int             `json:"low_stock_threshold" validate:"min=0"`
}

// SetAvailabilityRequest retira (false) o devuelve a la venta (true) un producto.
type SetAvailabilityRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LowStockItemResponse producto a reponer con la cantidad sugerida a hornear.
type LowStockItemResponse struct {
	Priority      int             `json:"priority"`
	SuggestedBake int             `json:"suggested_bake"`
	Product       ProductResponse `json:"product"`
}
