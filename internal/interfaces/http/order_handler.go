package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bakery-api/internal/application/dto"
	"github.com/jhoicas/bakery-api/internal/application/ledger"
	"github.com/jhoicas/bakery-api/internal/application/order"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/orderflow"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP de pedidos (protegido).
type OrderHandler struct {
	svc    *order.FulfillmentService
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(svc *order.FulfillmentService, l *ledger.Ledger, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, ledger: l, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Reserva el stock de todas las líneas o de ninguna.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cliente y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	lines := make([]order.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, order.LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	o, err := h.svc.CreateOrder(c.UserContext(), order.CreateOrderInput{
		CustomerID: in.CustomerID,
		ActorID:    GetUserID(c),
		Lines:      lines,
		Metadata: entity.OrderMetadata{
			Notes:         in.Notes,
			DeliveryDate:  in.DeliveryDate,
			PaymentMethod: in.PaymentMethod,
			Source:        in.Source,
		},
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(o))
}

// GetByID godoc
// @Summary      Obtener pedido por ID
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.svc.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toOrderResponse(o))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "Estado"
// @Param        customer_id  query  string  false  "Cliente"
// @Param        limit        query  int     false  "Límite"   default(20)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	filter := repository.OrderFilter{CustomerID: c.Query("customer_id"), Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		st, err := orderflow.ParseStatus(s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido: " + s})
		}
		filter.Status = st
	}
	orders, err := h.svc.ListOrders(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  Devuelve al stock todas las unidades reservadas por el pedido.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.svc.CancelOrder(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toOrderResponse(o))
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	to, err := orderflow.ParseStatus(in.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido: " + in.Status})
	}
	o, err := h.svc.Transition(c.UserContext(), c.Params("id"), to, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Ledger godoc
// @Summary      Movimientos de stock de un pedido
// @Description  Reservas, devoluciones y reversiones registradas en el libro para el pedido.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderLedgerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/ledger [get]
func (h *OrderHandler) Ledger(c *fiber.Ctx) error {
	o, err := h.svc.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	entries, err := h.ledger.ByOrder(c.UserContext(), o.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toLedgerEntryResponse(e))
	}
	return c.JSON(dto.OrderLedgerResponse{OrderID: o.ID, Items: items})
}
