package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/services"
	"storefront/pkg/logger"

	"github.com/labstack/echo/v4"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, storeID int64, req services.PlaceOrderRequest) (*services.PlacedOrder, error)
}

type OrderHandler struct {
	orders OrderPlacer
	log    logger.Logger
}

type orderWithItems struct {
	*domain.Order
	Items []*domain.OrderItem `json:"items"`
}

type PlaceOrderResponse struct {
	Order        orderWithItems `json:"order"`
	WhatsappLink string         `json:"whatsappLink"`
}

func NewOrderHandler(orders OrderPlacer, log logger.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log,
	}
}

// PlaceOrder handles visitor checkout for a store.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	storeID, err := strconv.ParseInt(c.Param("storeId"), 10, 64)
	if err != nil || storeID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid store id"})
	}

	var req services.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		h.log.Warn("Failed to bind order request", "store_id", storeID, "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	placed, err := h.orders.PlaceOrder(c.Request().Context(), storeID, req)
	switch {
	case errors.Is(err, services.ErrInvalidOrder):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrStoreNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Store not found"})
	case err != nil:
		h.log.Error("Failed to place order", "store_id", storeID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to place order"})
	}

	items := placed.Items
	if items == nil {
		items = []*domain.OrderItem{}
	}
	return c.JSON(http.StatusCreated, PlaceOrderResponse{
		Order:        orderWithItems{Order: placed.Order, Items: items},
		WhatsappLink: placed.WhatsappLink,
	})
}
