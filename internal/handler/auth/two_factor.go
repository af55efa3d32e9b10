package auth

import (
	"context"
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

// currentUser 取得已登入的使用者；token 有效但帳號已刪除時回傳 401
func currentUser(c echo.Context, db database.DB) (*model.User, error) {
	id, ok := handler.CurrentUserID(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	u, err := getUserByID(c.Request().Context(), db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
	}
	if err != nil {
		return nil, handler.Internal(err)
	}
	return u, nil
}

func twoFactorRequired(ctx context.Context, db database.DB, u *model.User) bool {
	sec, _ := loadSecuritySettings(ctx, db)
	return u.IsAdmin && sec.Require2FAAdmin
}

// TwoFactorStatusHandler 目前使用者的 2FA 狀態
// @Summary     2FA 狀態
// @Description 是否已啟用、是否有待驗證的秘鑰、是否被安全設定要求以及剩餘備援碼數量
// @Tags        two-factor
// @Produce     json
// @Success     200 {object} api.TwoFactorStatusResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/2fa/status [get]
func TwoFactorStatusHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, db)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		resp := api.TwoFactorStatusResponse{Required: twoFactorRequired(ctx, db, u)}

		tf, err := getTwoFactor(ctx, db, u.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return handler.Internal(err)
		default:
			resp.Enabled = tf.Enabled
			resp.Pending = !tf.Enabled
			if tf.Enabled {
				resp.BackupCodesRemaining = len(tf.BackupCodes)
			}
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// TwoFactorSetupHandler 產生新的 TOTP 秘鑰與 QR code，需再呼叫 verify 才會啟用
// @Summary     設定 2FA
// @Description 產生 TOTP 秘鑰、otpauth URL 與 PNG QR code (data URL)；已啟用時需先停用
// @Tags        two-factor
// @Produce     json
// @Success     200 {object} api.TwoFactorSetupResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     409 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/2fa/setup [post]
func TwoFactorSetupHandler(db database.DB, issuer string) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, db)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		if _, enabled, err := twoFactorEnabled(ctx, db, u.ID); err != nil {
			return handler.Internal(err)
		} else if enabled {
			return c.JSON(http.StatusConflict, api.ErrorResponse{Message: "two-factor authentication already enabled"})
		}

		setup, err := generateTOTPSecret(issuer, u.Email)
		if err != nil {
			return handler.Internal(err)
		}
		if err := upsertTwoFactorSecret(ctx, db, u.ID, setup.Secret); err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, api.TwoFactorSetupResponse{
			Secret:     setup.Secret,
			OTPAuthURL: setup.OTPAuthURL,
			QRCode:     setup.QRCode,
		})
	}
}

// TwoFactorVerifyHandler 驗證第一組 TOTP 後啟用 2FA，並回傳一次性的備援碼
// @Summary     啟用 2FA
// @Description 以驗證器 App 顯示的 6 位數驗證碼確認秘鑰；成功後回傳備援碼 (只顯示這一次)
// @Tags        two-factor
// @Accept      json
// @Produce     json
// @Param       body body     api.TwoFactorCodeRequest true "驗證碼"
// @Success     200  {object} api.BackupCodesResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse "尚未呼叫 setup"
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/2fa/verify [post]
func TwoFactorVerifyHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, db)
		if err != nil {
			return err
		}
		var req api.TwoFactorCodeRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		tf, err := getTwoFactor(ctx, db, u.ID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "two-factor setup not started"})
		}
		if err != nil {
			return handler.Internal(err)
		}
		if tf.Enabled {
			return c.JSON(http.StatusConflict, api.ErrorResponse{Message: "two-factor authentication already enabled"})
		}
		if !verifyTOTP(tf.Secret, req.Code) {
			return handler.BadRequest(c, service.ErrInvalidTOTP.Error())
		}

		plain, hashed, err := generateBackupCodes(service.BackupCodeCount)
		if err != nil {
			return handler.Internal(err)
		}
		if err := enableTwoFactor(ctx, db, u.ID, hashed); err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, api.BackupCodesResponse{Codes: plain})
	}
}

// TwoFactorDisableHandler 以密碼與驗證碼停用 2FA
// @Summary     停用 2FA
// @Description 需要目前密碼與 TOTP 或備援碼；安全設定要求管理員啟用 2FA 時無法停用
// @Tags        two-factor
// @Accept      json
// @Produce     json
// @Param       body body api.TwoFactorDisableRequest true "密碼與驗證碼"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/2fa/disable [post]
func TwoFactorDisableHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, db)
		if err != nil {
			return err
		}
		var req api.TwoFactorDisableRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		if twoFactorRequired(ctx, db, u) {
			return c.JSON(http.StatusForbidden, api.ErrorResponse{Message: "two-factor authentication is required for administrators"})
		}
		if err := comparePassword(u.PasswordHash, req.Password); err != nil {
			return handler.BadRequest(c, "password is incorrect")
		}

		tf, enabled, err := twoFactorEnabled(ctx, db, u.ID)
		if err != nil {
			return handler.Internal(err)
		}
		if !enabled {
			return handler.BadRequest(c, "two-factor authentication is not enabled")
		}
		ok, err := checkSecondFactor(ctx, db, cch, tf, req.Code)
		if err != nil {
			return handler.Internal(err)
		}
		if !ok {
			return handler.BadRequest(c, service.ErrInvalidTOTP.Error())
		}

		if err := deleteTwoFactor(ctx, db, u.ID); err != nil {
			return handler.Internal(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// BackupCodesHandler 重新產生備援碼，舊的全部失效
// @Summary     重新產生備援碼
// @Description 需要目前的 TOTP 驗證碼
// @Tags        two-factor
// @Accept      json
// @Produce     json
// @Param       body body     api.TwoFactorCodeRequest true "驗證碼"
// @Success     200  {object} api.BackupCodesResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/2fa/backup-codes [post]
func BackupCodesHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, db)
		if err != nil {
			return err
		}
		var req api.TwoFactorCodeRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		tf, enabled, err := twoFactorEnabled(ctx, db, u.ID)
		if err != nil {
			return handler.Internal(err)
		}
		if !enabled {
			return handler.BadRequest(c, "two-factor authentication is not enabled")
		}
		if !verifyTOTP(tf.Secret, req.Code) {
			return handler.BadRequest(c, service.ErrInvalidTOTP.Error())
		}

		plain, hashed, err := generateBackupCodes(service.BackupCodeCount)
		if err != nil {
			return handler.Internal(err)
		}
		if err := replaceBackupCodes(ctx, db, u.ID, hashed); err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, api.BackupCodesResponse{Codes: plain})
	}
}
