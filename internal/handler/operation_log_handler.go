package handler

import (
	"net/http"
	"strconv"
	"time"

	"erp/internal/config"
	"erp/internal/domain/diff"
	"erp/internal/domain/model"
	"erp/internal/middleware"
	"erp/internal/repository"
	"erp/internal/usecase/oplog"

	"github.com/labstack/echo/v4"
)

// /admin/operation-logs の一覧
type OperationLogHandler struct {
	engine *oplog.QueryEngine
	loc    *time.Location
}

func NewOperationLogHandler(engine *oplog.QueryEngine) *OperationLogHandler {
	return &OperationLogHandler{engine: engine, loc: time.Local}
}

func (h *OperationLogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())
	admin.GET("/operation-logs", h.list)
}

func (h *OperationLogHandler) list(c echo.Context) error {
	var f repository.OperationLogFilter

	if v := c.QueryParam("subject_table"); v != "" {
		t, err := model.ParseSubjectTable(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid subject_table"})
		}
		f.SubjectTable = &t
	}

	if v := c.QueryParam("operation_kind"); v != "" {
		k, err := model.ParseOperationKind(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid operation_kind"})
		}
		f.OperationKind = &k
	}

	if v := c.QueryParam("actor_kind"); v != "" {
		k, err := model.ParseActorKind(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_kind"})
		}
		f.ActorKind = &k
	}

	if v := c.QueryParam("actor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_id"})
		}
		f.ActorID = &id
	}

	if v := c.QueryParam("date_from"); v != "" {
		tm, err := time.ParseInLocation(diff.DateLayout, v, h.loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date_from"})
		}
		f.DateFrom = &tm
	}

	// date_to はその日の終わりまで含める
	if v := c.QueryParam("date_to"); v != "" {
		tm, err := time.ParseInLocation(diff.DateLayout, v, h.loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date_to"})
		}
		next := tm.AddDate(0, 0, 1)
		f.DateTo = &next
	}

	if f.DateFrom != nil && f.DateTo != nil && !f.DateFrom.Before(*f.DateTo) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date range"})
	}

	f.Search = c.QueryParam("search")

	if v := c.QueryParam("label_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid label_only"})
		}
		f.LabelOnly = b
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	pageSize := oplog.DefaultPageSize
	if v := c.QueryParam("page_size"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 1 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page_size"})
		}
		pageSize = s
	}

	return c.JSON(http.StatusOK, h.engine.GetLogs(c.Request().Context(), f, page, pageSize))
}
