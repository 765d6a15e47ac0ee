package inventory

import "github.com/jhoicas/bakery-api/internal/domain/entity"

// DeriveStatus calcula el estado de disponibilidad a partir del stock (servicio de dominio).
// Inactive es pegajoso: si el producto fue retirado a mano, el recálculo no lo reactiva.
//
//	stock == 0                    -> out_of_stock
//	0 < stock <= lowStockThreshold -> low_stock
//	stock > lowStockThreshold      -> active
func DeriveStatus(stock, lowStockThreshold int, current entity.ProductStatus) entity.ProductStatus {
	if current == entity.ProductStatusInactive {
		return entity.ProductStatusInactive
	}
	switch {
	case stock <= 0:
		return entity.ProductStatusOutOfStock
	case stock <= lowStockThreshold:
		return entity.ProductStatusLowStock
	default:
		return entity.ProductStatusActive
	}
}

// SuggestedBake cantidad sugerida para volver a dejar el producto por encima del umbral.
// Ideal = 2 × umbral; nunca negativa.
func SuggestedBake(stock, lowStockThreshold int) int {
	ideal := lowStockThreshold * 2
	if ideal <= stock {
		return 0
	}
	return ideal - stock
}
