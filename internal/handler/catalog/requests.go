package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

// Notifier 在需求寫入後以背景工作通知管理員與客戶
type Notifier interface {
	Dispatch(r model.Request)
}

var (
	createRequest = store.CreateRequest
	newReference  = ksuidReference
)

// ksuidReference 產生可依時間排序的需求編號
func ksuidReference() string { return "REQ-" + ksuid.New().String() }

// CreateRequestHandler 前台聯絡、試駕、報價與租賃需求
// @Summary     Submit a request
// @Description 儲存潛在客戶需求並在背景寄送通知；vehicle_id 必須是已上架車輛，rental_option_id 必須屬於該車輛
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateLeadRequest true "表單內容"
// @Success     201  {object} api.CreateLeadResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /requests [post]
func CreateRequestHandler(db database.DB, notifier Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateLeadRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		if !req.PrivacyConsent {
			return handler.BadRequest(c, "privacy consent is required")
		}
		ctx := c.Request().Context()

		r := &model.Request{
			Reference:        newReference(),
			Type:             req.Type,
			FirstName:        strings.TrimSpace(req.FirstName),
			LastName:         strings.TrimSpace(req.LastName),
			Email:            strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:            strings.TrimSpace(req.Phone),
			Message:          strings.TrimSpace(req.Message),
			PrivacyConsent:   req.PrivacyConsent,
			MarketingConsent: req.MarketingConsent,
			Status:           model.RequestNew,
		}

		if req.RentalOptionID != nil && req.VehicleID == nil {
			return handler.BadRequest(c, "rental_option_id requires vehicle_id")
		}
		if req.VehicleID != nil {
			v, err := getVehicleByID(ctx, db, *req.VehicleID)
			if errors.Is(err, store.ErrNotFound) || (err == nil && !v.IsPublished) {
				return handler.BadRequest(c, "vehicle is not available")
			}
			if err != nil {
				return handler.Internal(err)
			}
			r.VehicleID = &v.ID
			r.VehicleTitle = strings.TrimSpace(v.BrandName + " " + v.Model + " " + v.Version)
		}
		if req.RentalOptionID != nil {
			o, err := getRentalOption(ctx, db, *req.VehicleID, *req.RentalOptionID)
			if errors.Is(err, store.ErrNotFound) {
				return handler.BadRequest(c, "rental option does not belong to the vehicle")
			}
			if err != nil {
				return handler.Internal(err)
			}
			r.RentalOptionID = &o.ID
		}
		if req.ProvinceID != nil {
			p, err := getProvince(ctx, db, *req.ProvinceID)
			if errors.Is(err, store.ErrNotFound) {
				return handler.BadRequest(c, "unknown province")
			}
			if err != nil {
				return handler.Internal(err)
			}
			r.ProvinceID = &p.ID
			r.ProvinceName = p.Name
		}

		if err := createRequest(ctx, db, r); err != nil {
			return handler.StoreError(c, err, "request")
		}
		if notifier != nil {
			notifier.Dispatch(*r)
		}
		return c.JSON(http.StatusCreated, api.CreateLeadResponse{Reference: r.Reference})
	}
}
