package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus estado de disponibilidad derivado del stock.
type ProductStatus string

// Estados de producto. Inactive es el único que se fija a mano y no lo pisa el recálculo.
const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusLowStock   ProductStatus = "low_stock"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
	ProductStatusInactive   ProductStatus = "inactive"
)

// Product representa un producto de la panadería (pan, pastel, bollería).
// Stock y Status solo se modifican a través del catálogo; Status nunca lo fija el caller.
type Product struct {
	ID                string
	SKU               string // código único
	Name              string
	Category          string
	Price             decimal.Decimal // precio de venta vigente
	Stock             int
	LowStockThreshold int
	Status            ProductStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsInactive indica si el producto fue retirado de la venta manualmente.
func (p *Product) IsInactive() bool {
	return p.Status == ProductStatusInactive
}
