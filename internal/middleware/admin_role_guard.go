package middleware

import (
	"net/http"

	"erp/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// ActorFromContext は AuthJWT が積んだ操作者を取り出す。
func ActorFromContext(c echo.Context) (int64, model.ActorKind, bool) {
	id, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, "", false
	}
	kind, ok := c.Get(CtxActorKindKey).(model.ActorKind)
	if !ok || kind == "" {
		return 0, "", false
	}
	return id, kind, true
}

// AdminRoleGuard は管理者の操作だけを通す。
// 操作者が取れなければ 401、管理者以外は 403。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, kind, ok := ActorFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			// role と actor_kind の食い違いも拒否
			role, _ := c.Get(CtxUserRoleKey).(string)
			if kind != model.ActorAdmin || role != RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}
