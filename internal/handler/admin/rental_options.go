package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	createRentalOption = store.CreateRentalOption
	updateRentalOption = store.UpdateRentalOption
	deleteRentalOption = store.DeleteRentalOption
)

func rentalOptionFromRequest(vehicleID int, req api.RentalOptionRequest) *model.RentalOption {
	return &model.RentalOption{
		VehicleID:         vehicleID,
		ContractType:      req.ContractType,
		DurationMonths:    req.DurationMonths,
		AnnualKM:          req.AnnualKM,
		DownPaymentCents:  req.DownPaymentCents,
		MonthlyPriceCents: req.MonthlyPriceCents,
		FinalPaymentCents: req.FinalPaymentCents,
	}
}

// @Summary     List rental options of a vehicle
// @Tags        admin-vehicles
// @Produce     json
// @Param       id  path     int true "車輛 ID"
// @Success     200 {array}  model.RentalOption
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id}/rental-options [get]
func ListRentalOptionsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		ctx := c.Request().Context()
		if _, err := getVehicleByID(ctx, db, id); err != nil {
			return handler.StoreError(c, err, "vehicle")
		}
		options, err := listRentalOptions(ctx, db, id)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, options)
	}
}

// @Summary     Add a rental option (NLT / RTB)
// @Description 只有 listing_type 為 rental 或 both 的車輛可以設定租賃方案
// @Tags        admin-vehicles
// @Accept      json
// @Produce     json
// @Param       id   path     int                     true "車輛 ID"
// @Param       body body     api.RentalOptionRequest true "方案內容"
// @Success     201  {object} model.RentalOption
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id}/rental-options [post]
func CreateRentalOptionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		var req api.RentalOptionRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		v, err := getVehicleByID(ctx, db, id)
		if err != nil {
			return handler.StoreError(c, err, "vehicle")
		}
		if v.ListingType == model.ListingSale {
			return handler.BadRequest(c, "vehicle is not listed for rental")
		}

		o := rentalOptionFromRequest(id, req)
		if err := createRentalOption(ctx, db, o); err != nil {
			return handler.StoreError(c, err, "rental option")
		}
		return c.JSON(http.StatusCreated, o)
	}
}

// @Summary     Update a rental option
// @Tags        admin-vehicles
// @Accept      json
// @Produce     json
// @Param       id        path     int                     true "車輛 ID"
// @Param       option_id path     int                     true "方案 ID"
// @Param       body      body     api.RentalOptionRequest true "方案內容"
// @Success     200       {object} model.RentalOption
// @Failure     400       {object} api.ErrorResponse
// @Failure     404       {object} api.ErrorResponse
// @Failure     500       {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id}/rental-options/{option_id} [put]
func UpdateRentalOptionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		optionID, err := handler.ParamID(c, "option_id")
		if err != nil {
			return handler.BadRequest(c, "invalid rental option ID")
		}
		var req api.RentalOptionRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}

		o := rentalOptionFromRequest(id, req)
		o.ID = optionID
		if err := updateRentalOption(c.Request().Context(), db, o); err != nil {
			return handler.StoreError(c, err, "rental option")
		}
		return c.JSON(http.StatusOK, o)
	}
}

// @Summary     Delete a rental option
// @Tags        admin-vehicles
// @Param       id        path int true "車輛 ID"
// @Param       option_id path int true "方案 ID"
// @Success     204       "No Content"
// @Failure     400       {object} api.ErrorResponse
// @Failure     404       {object} api.ErrorResponse
// @Failure     500       {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/vehicles/{id}/rental-options/{option_id} [delete]
func DeleteRentalOptionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid vehicle ID")
		}
		optionID, err := handler.ParamID(c, "option_id")
		if err != nil {
			return handler.BadRequest(c, "invalid rental option ID")
		}
		if err := deleteRentalOption(c.Request().Context(), db, id, optionID); err != nil {
			return handler.StoreError(c, err, "rental option")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
