package server

import (
	"net/http"

	"erp/internal/config"
	"erp/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlers はルート登録に使う handler 一式
type Handlers struct {
	OperationLogs *handler.OperationLogHandler
	AdminOrders   *handler.AdminOrderHandler
	LockedDates   *handler.LockedDateHandler
	AdminAccounts *handler.AdminAccountHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})

	h.OperationLogs.RegisterRoutes(e, cfg)
	h.AdminOrders.RegisterRoutes(e, cfg)
	h.LockedDates.RegisterRoutes(e, cfg)
	h.AdminAccounts.RegisterRoutes(e, cfg)
}
