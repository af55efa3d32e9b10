package catalog

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	listBrands     = store.ListBrands
	listCategories = store.ListCategories
	listProvinces  = store.ListProvinces
	getProvince    = store.GetProvince
)

// cached 先讀快取，未命中時載入並寫回；快取故障時直接查資料庫
func cached[T any](ctx context.Context, cch cache.Cache, key string, load func() (T, error)) (T, error) {
	var v T
	if err := cache.GetJSON(ctx, cch, key, &v); err == nil {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	_ = cache.SetJSON(ctx, cch, key, v, handler.CatalogCacheTTL)
	return v, nil
}

// ListBrandsHandler 啟用中的品牌
// @Summary     List brands
// @Description 只回傳啟用中的品牌，結果快取 10 分鐘
// @Tags        catalog
// @Produce     json
// @Success     200 {array}  model.Brand
// @Failure     500 {object} api.ErrorResponse
// @Router      /brands [get]
func ListBrandsHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		list, err := cached(ctx, cch, handler.CacheKeyBrands, func() ([]model.Brand, error) {
			return listBrands(ctx, db, true)
		})
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

// ListCategoriesHandler 啟用中的車輛類別
// @Summary     List categories
// @Tags        catalog
// @Produce     json
// @Success     200 {array}  model.Category
// @Failure     500 {object} api.ErrorResponse
// @Router      /categories [get]
func ListCategoriesHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		list, err := cached(ctx, cch, handler.CacheKeyCategories, func() ([]model.Category, error) {
			return listCategories(ctx, db, true)
		})
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

// ListProvincesHandler 省份清單，可依大區過濾 (過濾結果不快取)
// @Summary     List provinces
// @Tags        catalog
// @Produce     json
// @Param       region query    string false "大區，例如 Lombardia"
// @Success     200    {array}  model.Province
// @Failure     500    {object} api.ErrorResponse
// @Router      /provinces [get]
func ListProvincesHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if region := c.QueryParam("region"); region != "" {
			list, err := listProvinces(ctx, db, region)
			if err != nil {
				return handler.Internal(err)
			}
			return c.JSON(http.StatusOK, list)
		}
		list, err := cached(ctx, cch, handler.CacheKeyProvinces, func() ([]model.Province, error) {
			return listProvinces(ctx, db, "")
		})
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, list)
	}
}
