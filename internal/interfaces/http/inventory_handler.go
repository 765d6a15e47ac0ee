package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/application/dto"
	"github.com/jhoicas/bakery-api/internal/application/ledger"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// InventoryHandler ajustes de stock y consulta del libro de inventario (protegido).
type InventoryHandler struct {
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	log     zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(c *catalog.Catalog, l *ledger.Ledger, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{catalog: c, ledger: l, log: log}
}

// Adjust godoc
// @Summary      Ajuste manual de inventario
// @Description  Suma (horneada) o resta (merma, conteo) unidades y registra el asiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "Ajuste"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	p, err := h.catalog.Adjust(c.UserContext(), catalog.AdjustInput{
		ProductID: in.ProductID,
		Delta:     in.Delta,
		ActorID:   GetUserID(c),
		Reason:    entity.LedgerReason(in.Reason),
		Notes:     in.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toProductResponse(p))
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.LedgerHistoryResponse
// @Router       /api/inventory/{productId}/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	productID := c.Params("productId")
	entries, err := h.ledger.History(c.UserContext(), productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toLedgerEntryResponse(e))
	}
	return c.JSON(dto.LedgerHistoryResponse{ProductID: productID, Items: items})
}

// Reconcile godoc
// @Summary      Conciliar libro y stock
// @Description  Reproduce el historial del producto y lo compara con el stock actual.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	r, err := h.ledger.Reconcile(c.UserContext(), c.Params("productId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReconciliationResponse(r))
}
