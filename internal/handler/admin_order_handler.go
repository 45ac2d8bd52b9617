package handler

import (
	"net/http"
	"strconv"

	"erp/internal/config"
	"erp/internal/middleware"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

// 指定した項目だけ変える。shipping_date の "" は未定に戻す。
type OrderDetailUpdateRequest struct {
	Quantity     *int64  `json:"quantity" validate:"omitempty,gt=0"`
	Status       *string `json:"status" validate:"omitempty,max=20"`
	ShippingDate *string `json:"shipping_date"`
	SupplierNote *string `json:"supplier_note" validate:"omitempty,max=500"`
}

type OrderReviewRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	admin.PUT("/orders/:id/details/:detail_id", h.updateDetail)
	admin.PUT("/orders/:id/review", h.review)
}

func (h *AdminOrderHandler) updateDetail(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	detailID, err := strconv.ParseInt(c.Param("detail_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid detail_id"})
	}

	var req OrderDetailUpdateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.UpdateDetail(c.Request().Context(), actor, orderID, detailID, usecase.UpdateOrderDetailInput{
		Quantity:     req.Quantity,
		Status:       req.Status,
		ShippingDate: req.ShippingDate,
		SupplierNote: req.SupplierNote,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) review(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderReviewRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Review(c.Request().Context(), actor, orderID, usecase.ReviewOrderInput{Status: req.Status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
