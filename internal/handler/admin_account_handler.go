package handler

import (
	"net/http"
	"strconv"

	"erp/internal/config"
	"erp/internal/middleware"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAccountHandler struct {
	uc *usecase.AdminAccountUsecase
}

func NewAdminAccountHandler(uc *usecase.AdminAccountUsecase) *AdminAccountHandler {
	return &AdminAccountHandler{uc: uc}
}

type AdminUpdateRequest struct {
	AdminName         *string `json:"admin_name" validate:"omitempty,max=64"`
	StaffNo           *string `json:"staff_no" validate:"omitempty,max=32"`
	PermissionLevelID *int64  `json:"permission_level_id" validate:"omitempty,gt=0"`
	Password          *string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (h *AdminAccountHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())
	admin.PUT("/administrators/:id", h.update)
}

func (h *AdminAccountHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdminUpdateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.UpdateAdmin(c.Request().Context(), actor, id, usecase.UpdateAdminInput{
		AdminName:         req.AdminName,
		StaffNo:           req.StaffNo,
		PermissionLevelID: req.PermissionLevelID,
		Password:          req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
