package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

type socialClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchEmail(ctx context.Context, tok *oauth2.Token) (string, error)
}

var (
	newSocialProvider = func(in model.Integration, publicBaseURL string) (socialClient, error) {
		return service.NewSocialProvider(in, publicBaseURL)
	}
	issueSocialState   = service.IssueSocialState
	consumeSocialState = service.ConsumeSocialState
)

// loadSocialProvider 讀取 google / facebook 整合設定；未支援或未啟用時已寫出回應
func loadSocialProvider(c echo.Context, db database.DB, publicBaseURL string) (socialClient, string, error) {
	provider := c.Param("provider")
	if provider != model.ProviderGoogle && provider != model.ProviderFacebook {
		return nil, provider, c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "unsupported social provider"})
	}
	in, err := getIntegration(c.Request().Context(), db, provider)
	if errors.Is(err, store.ErrNotFound) {
		return nil, provider, c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "social login not available"})
	}
	if err != nil {
		return nil, provider, handler.Internal(err)
	}
	client, err := newSocialProvider(*in, publicBaseURL)
	if errors.Is(err, service.ErrProviderDisabled) {
		return nil, provider, c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "social login not available"})
	}
	if err != nil {
		return nil, provider, handler.Internal(err)
	}
	return client, provider, nil
}

// SocialRedirectHandler 回傳第三方授權頁網址
// @Summary     社群登入網址
// @Description 產生 OAuth2 state (10 分鐘有效) 並回傳授權頁網址
// @Tags        auth
// @Produce     json
// @Param       provider path     string true "google 或 facebook"
// @Success     200      {object} api.SocialRedirectResponse
// @Failure     404      {object} api.ErrorResponse
// @Failure     500      {object} api.ErrorResponse
// @Router      /auth/social/{provider} [get]
func SocialRedirectHandler(db database.DB, cch cache.Cache, publicBaseURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, provider, err := loadSocialProvider(c, db, publicBaseURL)
		if client == nil {
			return err
		}
		state, err := issueSocialState(c.Request().Context(), cch, provider)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, api.SocialRedirectResponse{URL: client.AuthCodeURL(state)})
	}
}

// SocialCallbackHandler 交換授權碼並以 email 登入既有帳號
// @Summary     社群登入回呼
// @Description 只允許已存在且啟用中的帳號；不會自動建立新使用者。provider 未驗證的 email 一律拒絕 (401)
// @Tags        auth
// @Produce     json
// @Param       provider path     string true "google 或 facebook"
// @Param       code     query    string true "授權碼"
// @Param       state    query    string true "OAuth2 state"
// @Success     200      {object} api.LoginResponse
// @Failure     400      {object} api.ErrorResponse
// @Failure     401      {object} api.ErrorResponse
// @Failure     403      {object} api.ErrorResponse
// @Failure     404      {object} api.ErrorResponse
// @Failure     502      {object} api.ErrorResponse
// @Router      /auth/social/{provider}/callback [get]
func SocialCallbackHandler(db database.DB, cch cache.Cache, publicBaseURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, provider, err := loadSocialProvider(c, db, publicBaseURL)
		if client == nil {
			return err
		}
		ctx := c.Request().Context()

		if err := consumeSocialState(ctx, cch, c.QueryParam("state"), provider); err != nil {
			if errors.Is(err, service.ErrInvalidState) {
				return handler.BadRequest(c, err.Error())
			}
			return handler.Internal(err)
		}
		code := c.QueryParam("code")
		if code == "" {
			return handler.BadRequest(c, "missing authorization code")
		}

		tok, err := client.Exchange(ctx, code)
		if err != nil {
			return c.JSON(http.StatusBadGateway, api.ErrorResponse{Message: "authorization code exchange failed"})
		}
		email, err := client.FetchEmail(ctx, tok)
		if errors.Is(err, service.ErrEmailNotVerified) {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "email address is not verified by the provider"})
		}
		if err != nil {
			return c.JSON(http.StatusBadGateway, api.ErrorResponse{Message: "could not read email from provider"})
		}

		user, err := getUserByEmail(ctx, db, email)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "no account is linked to this email"})
		}
		if err != nil {
			return handler.Internal(err)
		}
		if !user.IsActive {
			return c.JSON(http.StatusForbidden, api.ErrorResponse{Message: "account disabled"})
		}

		sec, _ := loadSecuritySettings(ctx, db)
		return beginSession(c, db, cch, *user, sec)
	}
}
