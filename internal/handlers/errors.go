package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/storefront/internal/models"
	"github.com/labstack/echo/v4"
)

// ErrorHandler отдаёт любые ошибки в виде {"error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, models.ErrorResponse{Error: msg})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
