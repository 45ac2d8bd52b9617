package handler

import (
	"net/http"

	"erp/internal/middleware"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// AuthJWT が入れた値から操作者を組み立てる
func getActor(c echo.Context) (usecase.Actor, bool) {
	id, kind, ok := middleware.ActorFromContext(c)
	if !ok {
		return usecase.Actor{}, false
	}
	return usecase.Actor{ID: id, Kind: kind}, true
}
