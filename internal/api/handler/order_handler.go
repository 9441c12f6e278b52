package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/backoffice/internal/api/metrics"
	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Place handles POST /api/orders. A blank customer name falls back to the
// authenticated username.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order"
// @Success      201   {object}  ports.OrderDTO
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	username, err := currentUsername(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues("invalid").Inc()
		return err
	}

	customer := req.CustomerName
	if strings.TrimSpace(customer) == "" {
		customer = username
	}

	in := ports.PlaceOrderInput{
		CustomerName:     customer,
		DigitalSignature: req.DigitalSignature,
		Items:            make([]ports.OrderItemInput, len(req.Items)),
	}
	for i, it := range req.Items {
		in.Items[i] = ports.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	order, err := h.service.PlaceOrder(c.Request().Context(), in)
	if err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues(orderResult(err)).Inc()
		return err
	}

	metrics.OrdersPlacedTotal.WithLabelValues("success").Inc()
	metrics.OrderValue.Observe(order.TotalAmount.InexactFloat64())
	return c.JSON(http.StatusCreated, order)
}

// List handles GET /api/orders.
//
// @Summary      List orders, newest first
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.OrderDTO
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.service.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func orderResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrProductNotFound):
		return "invalid"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrDuplicateOrder):
		return "duplicate"
	default:
		return "error"
	}
}
