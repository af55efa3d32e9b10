// Package admin 後台管理 API (需要管理員權限)
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	listVehicles        = store.ListVehicles
	getVehicleByID      = store.GetVehicleByID
	createVehicle       = store.CreateVehicle
	updateVehicle       = store.UpdateVehicle
	setVehiclePublished = store.SetVehiclePublished
	deleteVehicle       = store.DeleteVehicle
	vehicleSlugExists   = store.VehicleSlugExists
	getBrand            = store.GetBrand
	listRentalOptions   = store.ListRentalOptions
)

// vehicleSlug 使用指定的 slug，或由品牌、車型與版本產生，並確保不重複
func vehicleSlug(ctx context.Context, db database.DB, req api.VehicleRequest, brand string, excludeID int) (string, error) {
	base := service.Slugify(req.Slug)
	if base == "" {
		base = service.Slugify(brand, req.Model, req.Version, strconv.Itoa(req.Year))
	}
	return service.UniqueSlug(ctx, base, func(ctx context.Context, s string) (bool, error) {
		return vehicleSlugExists(ctx, db, s, excludeID)
	})
}

// vehicleFromRequest 驗證跨欄位規則並轉為 model；錯誤訊息可直接回給使用者
func vehicleFromRequest(req api.VehicleRequest) (*model.Vehicle, error) {
	if req.ListingType != model.ListingRental && req.PriceCents == nil {
		return nil, errors.New("price_cents is required for vehicles on sale")
	}
	status := req.Status
	if status == "" {
		status = model.VehicleAvailable
	}
	images := req.Images
	if images == nil {
		images = []string{}
	}
	return &model.Vehicle{
		BrandID:      req.BrandID,
		CategoryID:   req.CategoryID,
		Model:        req.Model,
		Version:      req.Version,
		Year:         req.Year,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		PowerHP:      req.PowerHP,
		MileageKM:    req.MileageKM,
		Doors:        req.Doors,
		Seats:        req.Seats,
		Color:        req.Color,
		PriceCents:   req.PriceCents,
		ListingType:  req.ListingType,
		Status:       status,
		Description:  req.Description,
		Images:       images,
		IsFeatured:   req.IsFeatured,
		IsPublished:  req.IsPublished,
	}, nil
}

// saveVehicle 建立或更新車輛 (id 為 0 時建立)，回傳含品牌名稱的完整資料
func saveVehicle(c echo.Context, db database.DB, id int) error {
	var req api.VehicleRequest
	if ok, err := handler.Decode(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	v, err := vehicleFromRequest(req)
	if err != nil {
		return handler.BadRequest(c, err.Error())
	}
	brand, err := getBrand(ctx, db, req.BrandID)
	if errors.Is(err, store.ErrNotFound) {
		return handler.BadRequest(c, "unknown brand")
	}
	if err != nil {
		return handler.Internal(err)
	}
	// 改為純銷售前必須先移除租賃方案
	if id != 0 && v.ListingType == model.ListingSale {
		options, err := listRentalOptions(ctx, db, id)
		if err != nil {
			return handler.Internal(err)
		}
		if len(options) > 0 {
			return c.JSON(http.StatusConflict, api.ErrorResponse{Message: "remove rental options before listing the vehicle for sale only"})
		}
	}
	if v.Slug, err = vehicleSlug(ctx, db, req, brand.Name, id); err != nil {
		return handler.Internal(err)
	}

	status := http.StatusOK
	if id == 0 {
		err = createVehicle(ctx, db, v)
		status = http.StatusCreated
	} else {
		v.ID = id
		err = updateVehicle(ctx, db, v)
	}
	if err != nil {
		return handler.StoreError(c, err, "vehicle")
	}

	saved, err := getVehicleByID(ctx, db, v.ID)
	if err != nil {
		return handler.StoreError(c, err, "vehicle")
	}
	return c.JSON(status, saved)
}

// @Summary     List vehicles (admin)
// @Description 與前台相同的過濾條件，另可用 published 篩選上架狀態
// @Tags        admin-vehicles
// @Produce     json
// @Param       published query    boolean false "上架狀態"
// @Param       q         query    string  false "關鍵字"
// @Param       page      query    int     false "頁碼"
// @Param       per_page  query    int     false "每頁筆數"
// @Success     200 {object} api.VehicleListResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles [get]
func ListVehiclesHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var q api.VehicleListQuery
		if ok, err := handler.Decode(c, &q); !ok {
			return err
		}
		f := handler.VehicleFilter(q)
		items, total, err := listVehicles(c.Request().Context(), db, f)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, handler.VehicleListResponse(items, total, f.Page))
	}
}

// @Summary     Get a vehicle (admin)
// @Tags        admin-vehicles
// @Produce     json
// @Param       id  path     int true "車輛 ID"
// @Success     200 {object} api.VehicleDetailResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id} [get]
func GetVehicleHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		ctx := c.Request().Context()
		v, err := getVehicleByID(ctx, db, id)
		if err != nil {
			return handler.StoreError(c, err, "vehicle")
		}
		options, err := listRentalOptions(ctx, db, id)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, api.VehicleDetailResponse{Vehicle: *v, RentalOptions: options})
	}
}

// @Summary     Create a vehicle
// @Description slug 留空時由品牌、車型、版本與年份產生；重複時自動加上序號
// @Tags        admin-vehicles
// @Accept      json
// @Produce     json
// @Param       body body     api.VehicleRequest true "車輛資料"
// @Success     201  {object} model.Vehicle
// @Failure     400  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles [post]
func CreateVehicleHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		return saveVehicle(c, db, 0)
	}
}

// @Summary     Update a vehicle
// @Tags        admin-vehicles
// @Accept      json
// @Produce     json
// @Param       id   path     int                true "車輛 ID"
// @Param       body body     api.VehicleRequest true "車輛資料"
// @Success     200  {object} model.Vehicle
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id} [put]
func UpdateVehicleHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		return saveVehicle(c, db, id)
	}
}

// @Summary     Publish or unpublish a vehicle
// @Tags        admin-vehicles
// @Accept      json
// @Param       id   path int                true "車輛 ID"
// @Param       body body api.PublishRequest true "上架狀態"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id}/publish [patch]
func PublishVehicleHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		var req api.PublishRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		if err := setVehiclePublished(c.Request().Context(), db, id, req.Published); err != nil {
			return handler.StoreError(c, err, "vehicle")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Delete a vehicle
// @Description 一併刪除租賃方案；相關需求保留但不再指向車輛
// @Tags        admin-vehicles
// @Param       id  path int true "車輛 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id} [delete]
func DeleteVehicleHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		if err := deleteVehicle(c.Request().Context(), db, id); err != nil {
			return handler.StoreError(c, err, "vehicle")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
