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
	"github.com/A123lny/o2o-catalogo-sub002/internal/notify"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	listIntegrations  = store.ListIntegrations
	getIntegration    = store.GetIntegration
	updateIntegration = store.UpdateIntegration
	testIntegration   = notify.TestIntegration
)

// loadIntegration 依路徑參數取得整合設定，不支援的 provider 回傳 404
func loadIntegration(c echo.Context, db database.DB) (*model.Integration, error) {
	provider := c.Param("provider")
	if !service.KnownProvider(provider) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "integration not found")
	}
	in, err := getIntegration(c.Request().Context(), db, provider)
	if errors.Is(err, store.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "integration not found")
	}
	if err != nil {
		return nil, handler.Internal(err)
	}
	return in, nil
}

// @Summary     List integrations
// @Description 機敏欄位以 ******** 遮罩
// @Tags        admin-integrations
// @Produce     json
// @Param       kind query    string false "email / payment / social / notification"
// @Success     200  {array}  model.Integration
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/integrations [get]
func ListIntegrationsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := listIntegrations(c.Request().Context(), db, c.QueryParam("kind"))
		if err != nil {
			return handler.Internal(err)
		}
		masked := make([]model.Integration, 0, len(list))
		for _, in := range list {
			masked = append(masked, service.MaskIntegration(in))
		}
		return c.JSON(http.StatusOK, masked)
	}
}

// @Summary     Get an integration
// @Tags        admin-integrations
// @Produce     json
// @Param       provider path     string true "smtp / stripe / paypal / google / facebook / telegram"
// @Success     200      {object} model.Integration
// @Failure     404      {object} api.ErrorResponse
// @Failure     500      {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/integrations/{provider} [get]
func GetIntegrationHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := loadIntegration(c, db)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, service.MaskIntegration(*in))
	}
}

// @Summary     Update an integration
// @Description 送回遮罩值的機敏欄位維持原值；未知欄位回傳 400
// @Tags        admin-integrations
// @Accept      json
// @Produce     json
// @Param       provider path     string                       true "provider"
// @Param       body     body     api.UpdateIntegrationRequest true "設定"
// @Success     200      {object} model.Integration
// @Failure     400      {object} api.ErrorResponse
// @Failure     404      {object} api.ErrorResponse
// @Failure     500      {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/integrations/{provider} [put]
func UpdateIntegrationHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := loadIntegration(c, db)
		if err != nil {
			return err
		}
		var req api.UpdateIntegrationRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}

		merged, err := service.MergeIntegrationConfig(in.Provider, in.Config, req.Config)
		if err != nil {
			return handler.BadRequest(c, err.Error())
		}
		in.Enabled = req.Enabled
		in.Config = merged

		ctx := c.Request().Context()
		if err := updateIntegration(ctx, db, in); err != nil {
			return handler.StoreError(c, err, "integration")
		}
		if in.Kind == model.KindPayment {
			handler.InvalidateCache(ctx, cch, handler.CacheKeyPayments)
		}
		return c.JSON(http.StatusOK, service.MaskIntegration(*in))
	}
}

// @Summary     Test an integration
// @Description smtp 寄出測試信、telegram 發送測試訊息，其餘僅檢查設定
// @Tags        admin-integrations
// @Accept      json
// @Produce     json
// @Param       provider path     string                     true  "provider"
// @Param       body     body     api.TestIntegrationRequest false "測試參數"
// @Success     200      {object} api.MessageResponse
// @Failure     404      {object} api.ErrorResponse
// @Failure     422      {object} api.ErrorResponse
// @Failure     500      {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/integrations/{provider}/test [post]
func TestIntegrationHandler(db database.DB, publicBaseURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := loadIntegration(c, db)
		if err != nil {
			return err
		}
		var req api.TestIntegrationRequest
		if c.Request().ContentLength > 0 {
			if ok, err := handler.Decode(c, &req); !ok {
				return err
			}
		}
		if err := testIntegration(c.Request().Context(), *in, req.To, publicBaseURL); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, api.MessageResponse{Message: "ok"})
	}
}
