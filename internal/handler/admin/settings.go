package admin

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	listSettings         = store.ListSettings
	updateSettings       = store.UpdateSettings
	loadSecuritySettings = service.LoadSecuritySettings
)

// @Summary     List settings
// @Tags        admin-settings
// @Produce     json
// @Param       group query    string false "general / security"
// @Success     200   {array}  model.Setting
// @Failure     500   {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/settings [get]
func ListSettingsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		settings, err := listSettings(c.Request().Context(), db, c.QueryParam("group"), false)
		if err != nil {
			return handler.Internal(err)
		}
		if settings == nil {
			settings = []model.Setting{}
		}
		return c.JSON(http.StatusOK, settings)
	}
}

// @Summary     Update general settings
// @Description 只能修改既有的 key；任一 key 不存在時整批不寫入
// @Tags        admin-settings
// @Accept      json
// @Param       body body api.UpdateSettingsRequest true "設定值"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/settings [put]
func UpdateSettingsHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.UpdateSettingsRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()
		err := updateSettings(ctx, db, req.Group, req.Values)
		if errors.Is(err, store.ErrNotFound) {
			return handler.BadRequest(c, "unknown setting key")
		}
		if err != nil {
			return handler.Internal(err)
		}
		handler.InvalidateCache(ctx, cch, handler.CacheKeyPublicSettings)
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Get security settings
// @Tags        admin-settings
// @Produce     json
// @Success     200 {object} service.SecuritySettings
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/settings/security [get]
func GetSecuritySettingsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		sec, err := loadSecuritySettings(c.Request().Context(), db)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, sec)
	}
}

// @Summary     Update security settings
// @Tags        admin-settings
// @Accept      json
// @Produce     json
// @Param       body body     service.SecuritySettings true "安全設定"
// @Success     200  {object} service.SecuritySettings
// @Failure     400  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/settings/security [put]
func UpdateSecuritySettingsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req service.SecuritySettings
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		if err := updateSettings(c.Request().Context(), db, model.SettingsSecurity, req.ToMap()); err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, req)
	}
}
