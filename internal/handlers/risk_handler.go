package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// RiskHandler отдаёт сигналы риска по телефону покупателя.
type RiskHandler struct {
	riskService services.RiskService
}

// NewRiskHandler создаёт обработчик проверок покупателя.
func NewRiskHandler(riskService services.RiskService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

func bindPhone(c echo.Context) (string, error) {
	var req models.PhoneRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "phone is required")
	}
	return phone, nil
}

// CustomerHistory обрабатывает POST /api/admin/customers/history.
func (h *RiskHandler) CustomerHistory(c echo.Context) error {
	phone, err := bindPhone(c)
	if err != nil {
		return err
	}

	profile, err := h.riskService.CustomerHistory(c.Request().Context(), phone)
	if err != nil {
		return riskError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// CombinedHistory обрабатывает POST /api/admin/customers/courier-history.
// Недоступность курьерского сервиса отражается флагами в ответе, а не кодом.
func (h *RiskHandler) CombinedHistory(c echo.Context) error {
	phone, err := bindPhone(c)
	if err != nil {
		return err
	}

	resp, err := h.riskService.CombinedHistory(c.Request().Context(), phone)
	if err != nil {
		return riskError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func riskError(c echo.Context, err error) error {
	if errors.Is(err, services.ErrInvalidPhone) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid phone number")
	}
	c.Logger().Errorf("customer history: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load customer history")
}
