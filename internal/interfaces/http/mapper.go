package http

import (
	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/application/dto"
	"github.com/jhoicas/bakery-api/internal/application/ledger"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Category:          p.Category,
		Price:             p.Price,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toLowStockResponse(items []catalog.LowStockItem) []dto.LowStockItemResponse {
	out := make([]dto.LowStockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemResponse{
			Priority:      it.Priority,
			SuggestedBake: it.SuggestedBake,
			Product:       toProductResponse(it.Product),
		})
	}
	return out
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}
	history := make([]dto.StatusChangeResponse, 0, len(o.History))
	for _, h := range o.History {
		history = append(history, dto.StatusChangeResponse{
			From:    string(h.From),
			To:      string(h.To),
			ActorID: h.ActorID,
			At:      h.At,
		})
	}
	return dto.OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		Lines:         lines,
		Notes:         o.Metadata.Notes,
		DeliveryDate:  o.Metadata.DeliveryDate,
		PaymentMethod: o.Metadata.PaymentMethod,
		Source:        o.Metadata.Source,
		History:       history,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toLedgerEntryResponse(e *entity.InventoryLedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:            e.ID,
		Seq:           e.Seq,
		ProductID:     e.ProductID,
		PreviousStock: e.PreviousStock,
		NewStock:      e.NewStock,
		Change:        e.Change,
		Reason:        string(e.Reason),
		ActorID:       e.ActorID,
		OrderID:       e.OrderID,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
	}
}

func toReconciliationResponse(r *ledger.Reconciliation) dto.ReconciliationResponse {
	return dto.ReconciliationResponse{
		ProductID:  r.ProductID,
		Entries:    r.Entries,
		Replayed:   r.Replayed,
		Current:    r.Current,
		Consistent: r.Consistent,
	}
}
