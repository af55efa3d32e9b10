// Package handler 放置各路由群組共用的小工具與健康檢查
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/middleware"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

// 前台查詢結果的快取鍵
const (
	CacheKeyBrands         = "catalog:brands"
	CacheKeyCategories     = "catalog:categories"
	CacheKeyProvinces      = "catalog:provinces"
	CacheKeyPublicSettings = "catalog:settings"
	CacheKeyPayments       = "catalog:payments"

	CatalogCacheTTL = 10 * time.Minute
)

// Decode 綁定並驗證請求；失敗時已寫出 400，ok 為 false
func Decode(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
	}
	return true, nil
}

// ParamID 解析正整數路徑參數
func ParamID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// BadRequest 寫出 400
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: msg})
}

// StoreError 將 store 錯誤轉為 HTTP 回應；無法對應的錯誤交由 ErrorHandler 記錄
func StoreError(c echo.Context, err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: what + " not found"})
	case errors.Is(err, store.ErrConflict):
		return c.JSON(http.StatusConflict, api.ErrorResponse{Message: what + " conflicts with existing data"})
	default:
		return Internal(err)
	}
}

// Internal 回傳 500，原始錯誤只寫入日誌
func Internal(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

// CurrentUserID 回傳 RequireAuth 放入 context 的使用者 ID
func CurrentUserID(c echo.Context) (int, bool) {
	claims := middleware.Claims(c)
	if claims == nil {
		return 0, false
	}
	return claims.UserID, true
}

// InvalidateCache 刪除前台快取；失敗時只會讓資料晚一點更新，因此不回傳錯誤
func InvalidateCache(ctx context.Context, c cache.Cache, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	_ = c.Del(ctx, keys...).Err()
}

// VehicleFilter 將查詢參數轉為 store 的過濾條件
func VehicleFilter(q api.VehicleListQuery) store.VehicleFilter {
	return store.VehicleFilter{
		BrandSlug:    q.Brand,
		CategorySlug: q.Category,
		FuelType:     q.FuelType,
		Transmission: q.Transmission,
		ListingType:  q.ListingType,
		ContractType: q.ContractType,
		Status:       q.Status,
		Search:       q.Q,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		MaxMonthly:   q.MaxMonthly,
		MinYear:      q.MinYear,
		MaxMileage:   q.MaxMileage,
		Featured:     q.Featured,
		Published:    q.Published,
		Sort:         q.Sort,
		Page:         store.Page{Page: q.Page, PerPage: q.PerPage},
	}
}

// VehicleListResponse 組裝分頁回應
func VehicleListResponse(items []model.Vehicle, total int, page store.Page) api.VehicleListResponse {
	page = page.Normalize()
	if items == nil {
		items = []model.Vehicle{}
	}
	return api.VehicleListResponse{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: api.TotalPages(total, page.PerPage),
	}
}
