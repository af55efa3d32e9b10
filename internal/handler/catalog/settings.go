package catalog

import (
	"context"
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
	settingsMap      = store.SettingsMap
	listIntegrations = store.ListIntegrations
)

// PublicSettingsHandler 網站公開設定 (名稱、聯絡方式等)
// @Summary     Public settings
// @Description 只包含標記為公開的設定，結果快取 10 分鐘
// @Tags        catalog
// @Produce     json
// @Success     200 {object} map[string]string
// @Failure     500 {object} api.ErrorResponse
// @Router      /settings/public [get]
func PublicSettingsHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		values, err := cached(ctx, cch, handler.CacheKeyPublicSettings, func() (map[string]string, error) {
			return settingsMap(ctx, db, "", true)
		})
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, values)
	}
}

// PaymentConfigHandler 已啟用付款方式的公開設定
// @Summary     Payment configuration
// @Description 回傳已啟用的 Stripe / PayPal 可公開欄位 (publishable key、client id、幣別)，不含任何密鑰
// @Tags        catalog
// @Produce     json
// @Success     200 {object} api.PaymentConfigResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /payments/config [get]
func PaymentConfigHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		resp, err := cached(ctx, cch, handler.CacheKeyPayments, func() (api.PaymentConfigResponse, error) {
			return paymentConfig(ctx, db)
		})
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func paymentConfig(ctx context.Context, db database.DB) (api.PaymentConfigResponse, error) {
	list, err := listIntegrations(ctx, db, model.KindPayment)
	if err != nil {
		return api.PaymentConfigResponse{}, err
	}
	resp := api.PaymentConfigResponse{Providers: []api.PaymentProvider{}}
	for _, in := range list {
		if !in.Enabled {
			continue
		}
		resp.Providers = append(resp.Providers, api.PaymentProvider{
			Provider: in.Provider,
			Config:   service.PublicPaymentConfig(in),
		})
	}
	return resp, nil
}
