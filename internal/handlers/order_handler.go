package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// OrderHandler обрабатывает оформление заказов.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler создаёт новый обработчик заказов.
func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// PlaceOrder обрабатывает POST /api/orders.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req models.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	resp, err := h.orderService.PlaceOrder(c.Request().Context(), &req)
	if err != nil {
		var (
			invalid *services.ValidationError
			blocked *services.TimeBlockedError
		)
		switch {
		case errors.As(err, &invalid):
			return echo.NewHTTPError(http.StatusBadRequest, invalid.Msg)
		case errors.As(err, &blocked):
			return c.JSON(http.StatusTooManyRequests, models.TimeBlockedResponse{
				Error:           blocked.Message(),
				ErrorCode:       services.ErrorCodeTimeBlocked,
				LastOrderNumber: blocked.LastOrderNumber,
				WaitHours:       blocked.WaitHours,
			})
		default:
			c.Logger().Errorf("place order: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to place order")
		}
	}

	return c.JSON(http.StatusOK, resp)
}
