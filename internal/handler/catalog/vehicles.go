// Package catalog 前台公開 API：車輛目錄、選單資料、聯絡表單與公開設定
package catalog

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	listVehicles      = store.ListVehicles
	getVehicleBySlug  = store.GetVehicleBySlug
	getVehicleByID    = store.GetVehicleByID
	listRentalOptions = store.ListRentalOptions
	getRentalOption   = store.GetRentalOption
)

// ListVehiclesHandler 已上架車輛的目錄查詢
// @Summary     List vehicles
// @Description 依品牌、類別、燃料、價格、租賃方案等條件過濾已上架車輛，分頁回傳
// @Tags        catalog
// @Produce     json
// @Param       brand         query    string  false "品牌 slug"
// @Param       category      query    string  false "類別 slug"
// @Param       fuel_type     query    string  false "燃料"
// @Param       transmission  query    string  false "變速箱"
// @Param       listing_type  query    string  false "sale / rental / both"
// @Param       contract_type query    string  false "NLT / RTB"
// @Param       status        query    string  false "available / reserved / sold"
// @Param       q             query    string  false "關鍵字"
// @Param       min_price     query    int     false "最低售價 (分)"
// @Param       max_price     query    int     false "最高售價 (分)"
// @Param       max_monthly   query    int     false "最高月租 (分)"
// @Param       min_year      query    int     false "最早年份"
// @Param       max_mileage   query    int     false "最高里程"
// @Param       featured      query    boolean false "精選"
// @Param       sort          query    string  false "newest / price_asc / price_desc / year_desc / mileage_asc / monthly_asc"
// @Param       page          query    int     false "頁碼"
// @Param       per_page      query    int     false "每頁筆數 (1-100)"
// @Success     200 {object} api.VehicleListResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /vehicles [get]
func ListVehiclesHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var q api.VehicleListQuery
		if ok, err := handler.Decode(c, &q); !ok {
			return err
		}
		f := handler.VehicleFilter(q)
		f.PublishedOnly = true
		f.Published = nil

		items, total, err := listVehicles(c.Request().Context(), db, f)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, handler.VehicleListResponse(items, total, f.Page))
	}
}

// GetVehicleHandler 車輛詳細資料與租賃方案
// @Summary     Get a vehicle by slug
// @Tags        catalog
// @Produce     json
// @Param       slug path     string true "車輛 slug"
// @Success     200  {object} api.VehicleDetailResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /vehicles/{slug} [get]
func GetVehicleHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		v, err := getVehicleBySlug(ctx, db, c.Param("slug"), true)
		if err != nil {
			return handler.StoreError(c, err, "vehicle")
		}
		options, err := listRentalOptions(ctx, db, v.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, api.VehicleDetailResponse{Vehicle: *v, RentalOptions: options})
	}
}
