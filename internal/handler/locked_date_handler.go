package handler

import (
	"net/http"
	"strconv"

	"erp/internal/config"
	"erp/internal/middleware"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 出荷不可日のロック/解除
type LockedDateHandler struct {
	uc *usecase.LockedDateUsecase
}

func NewLockedDateHandler(uc *usecase.LockedDateUsecase) *LockedDateHandler {
	return &LockedDateHandler{uc: uc}
}

type LockDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *LockedDateHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	admin.POST("/locked-dates", h.lock)
	admin.DELETE("/locked-dates/:id", h.unlock)
}

func (h *LockedDateHandler) lock(c echo.Context) error {
	var req LockDateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Lock(c.Request().Context(), actor, req.Date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *LockedDateHandler) unlock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Unlock(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "unlocked"})
}
