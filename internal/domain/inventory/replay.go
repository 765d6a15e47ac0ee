package inventory

import (
	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// Replay reproduce el stock aplicando cada Change en orden, partiendo del PreviousStock del primer asiento.
// Devuelve LedgerMismatchError si un asiento no encadena con el anterior o si su Change no cuadra.
// Una historia vacía reproduce 0.
func Replay(entries []*entity.InventoryLedgerEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	stock := entries[0].PreviousStock
	for _, e := range entries {
		if e.PreviousStock != stock {
			return stock, &domain.LedgerMismatchError{ProductID: e.ProductID, EntryID: e.ID, Expected: stock, Found: e.PreviousStock}
		}
		if e.NewStock-e.PreviousStock != e.Change {
			return stock, &domain.LedgerMismatchError{ProductID: e.ProductID, EntryID: e.ID, Expected: e.NewStock - e.PreviousStock, Found: e.Change}
		}
		stock += e.Change
	}
	return stock, nil
}
