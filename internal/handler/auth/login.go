// Package auth 處理登入、雙重驗證與社群登入
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

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
	getUserByEmail        = store.GetUserByEmail
	getUserByID           = store.GetUserByID
	getTwoFactor          = store.GetTwoFactor
	touchLastLogin        = store.TouchLastLogin
	replaceBackupCodes    = store.ReplaceBackupCodes
	upsertTwoFactorSecret = store.UpsertTwoFactorSecret
	enableTwoFactor       = store.EnableTwoFactor
	deleteTwoFactor       = store.DeleteTwoFactor
	getIntegration        = store.GetIntegration

	authenticateUser     = service.AuthenticateUser
	comparePassword      = service.ComparePassword
	issueAccessToken     = service.IssueAccessToken
	loadSecuritySettings = service.LoadSecuritySettings
	isLockedOut          = service.IsLockedOut
	registerFailedLogin  = service.RegisterFailedLogin
	resetLoginFailures   = service.ResetLoginFailures
	issueChallenge       = service.IssueTwoFactorChallenge
	resolveChallenge     = service.ResolveTwoFactorChallenge
	dropChallenge        = service.DropTwoFactorChallenge
	challengeFailed      = service.RegisterChallengeFailure
	markTOTPUsed         = service.MarkTOTPUsed
	verifyTOTP           = service.VerifyTOTP
	consumeBackupCode    = service.ConsumeBackupCode
	generateTOTPSecret   = service.GenerateTOTPSecret
	generateBackupCodes  = service.GenerateBackupCodes
)

const invalidCredentials = "invalid email or password"

// LoginHandler 以 Email / 密碼登入；已啟用 2FA 時只回傳 challenge_token
// @Summary     登入使用者
// @Description 驗證 Email 與密碼。連續失敗超過上限會暫時鎖定 (429)；已啟用 2FA 的帳號需再呼叫 /auth/2fa/login
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.LoginRequest true "登入資料"
// @Success     200  {object} api.LoginResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse "帳號已停用"
// @Failure     429  {object} api.ErrorResponse "登入失敗次數過多"
// @Failure     500  {object} api.ErrorResponse
// @Router      /auth/login [post]
func LoginHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()
		email := strings.TrimSpace(req.Email)

		sec, _ := loadSecuritySettings(ctx, db)
		locked, err := isLockedOut(ctx, cch, email, sec.MaxLoginAttempts)
		if err != nil {
			return handler.Internal(err)
		}
		if locked {
			return c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Message: "too many failed login attempts, try again later"})
		}

		user, err := getUserByEmail(ctx, db, email)
		if errors.Is(err, store.ErrNotFound) {
			return loginFailed(c, cch, email, sec)
		}
		if err != nil {
			return handler.Internal(err)
		}

		switch err := authenticateUser(ctx, *user, req.Password); {
		case errors.Is(err, service.ErrInvalidCredentials):
			return loginFailed(c, cch, email, sec)
		case errors.Is(err, service.ErrInactiveUser):
			return c.JSON(http.StatusForbidden, api.ErrorResponse{Message: "account disabled"})
		case err != nil:
			return handler.Internal(err)
		}

		return beginSession(c, db, cch, *user, sec)
	}
}

func loginFailed(c echo.Context, cch cache.Cache, email string, sec service.SecuritySettings) error {
	if _, err := registerFailedLogin(c.Request().Context(), cch, email, sec.LockoutWindow()); err != nil {
		return handler.Internal(err)
	}
	return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: invalidCredentials})
}

// twoFactorEnabled 查詢使用者是否已完成 2FA 設定
func twoFactorEnabled(ctx context.Context, db database.DB, userID int) (*model.TwoFactor, bool, error) {
	tf, err := getTwoFactor(ctx, db, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return tf, tf.Enabled, nil
}

// beginSession 身分已確認後：需要 2FA 時發出挑戰，否則直接發 token
func beginSession(c echo.Context, db database.DB, cch cache.Cache, user model.User, sec service.SecuritySettings) error {
	ctx := c.Request().Context()
	_, enabled, err := twoFactorEnabled(ctx, db, user.ID)
	if err != nil {
		return handler.Internal(err)
	}
	if enabled {
		token, err := issueChallenge(ctx, cch, user.ID)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, api.LoginResponse{TwoFactorRequired: true, ChallengeToken: token})
	}

	resp, err := issueSession(ctx, db, user, sec)
	if err != nil {
		return handler.Internal(err)
	}
	_ = resetLoginFailures(ctx, cch, user.Email)
	resp.TwoFactorSetupRequired = user.IsAdmin && sec.Require2FAAdmin
	return c.JSON(http.StatusOK, resp)
}

func issueSession(ctx context.Context, db database.DB, user model.User, sec service.SecuritySettings) (api.LoginResponse, error) {
	ttl := sec.SessionTTL()
	token, err := issueAccessToken(user, ttl)
	if err != nil {
		return api.LoginResponse{}, err
	}
	if err := touchLastLogin(ctx, db, user.ID); err != nil {
		return api.LoginResponse{}, err
	}
	return api.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// TwoFactorLoginHandler 以 challenge_token 搭配 TOTP 或備援碼完成登入
// @Summary     2FA 登入
// @Description 密碼驗證後取得的 challenge_token 加上 6 位數 TOTP 或一組備援碼 (每組只能使用一次)
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.TwoFactorLoginRequest true "挑戰與驗證碼"
// @Success     200  {object} api.LoginResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse "驗證碼錯誤；同一挑戰錯誤過多次需重新登入"
// @Failure     403  {object} api.ErrorResponse "帳號已停用"
// @Failure     429  {object} api.ErrorResponse "登入失敗次數過多"
// @Failure     500  {object} api.ErrorResponse
// @Router      /auth/2fa/login [post]
func TwoFactorLoginHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.TwoFactorLoginRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		userID, err := resolveChallenge(ctx, cch, req.ChallengeToken)
		if errors.Is(err, service.ErrChallengeExpired) {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "two-factor challenge expired, log in again"})
		}
		if err != nil {
			return handler.Internal(err)
		}

		user, err := getUserByID(ctx, db, userID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: invalidCredentials})
		}
		if err != nil {
			return handler.Internal(err)
		}
		if !user.IsActive {
			return c.JSON(http.StatusForbidden, api.ErrorResponse{Message: "account disabled"})
		}

		sec, _ := loadSecuritySettings(ctx, db)
		locked, err := isLockedOut(ctx, cch, user.Email, sec.MaxLoginAttempts)
		if err != nil {
			return handler.Internal(err)
		}
		if locked {
			_ = dropChallenge(ctx, cch, req.ChallengeToken)
			return c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Message: "too many failed login attempts, try again later"})
		}

		tf, enabled, err := twoFactorEnabled(ctx, db, userID)
		if err != nil {
			return handler.Internal(err)
		}
		if !enabled {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "two-factor authentication is not enabled"})
		}

		ok, err := checkSecondFactor(ctx, db, cch, tf, req.Code)
		if err != nil {
			return handler.Internal(err)
		}
		if !ok {
			return secondFactorFailed(c, cch, req.ChallengeToken, *user, sec)
		}

		_ = dropChallenge(ctx, cch, req.ChallengeToken)
		resp, err := issueSession(ctx, db, *user, sec)
		if err != nil {
			return handler.Internal(err)
		}
		_ = resetLoginFailures(ctx, cch, user.Email)
		return c.JSON(http.StatusOK, resp)
	}
}

// secondFactorFailed 錯誤的驗證碼同時計入挑戰與帳號的失敗次數；挑戰用盡後必須重新輸入密碼
func secondFactorFailed(c echo.Context, cch cache.Cache, token string, user model.User, sec service.SecuritySettings) error {
	ctx := c.Request().Context()
	if _, err := registerFailedLogin(ctx, cch, user.Email, sec.LockoutWindow()); err != nil {
		return handler.Internal(err)
	}
	n, err := challengeFailed(ctx, cch, token)
	if err != nil {
		return handler.Internal(err)
	}
	if n >= service.MaxChallengeFailures {
		_ = dropChallenge(ctx, cch, token)
		return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "too many invalid codes, log in again"})
	}
	return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: service.ErrInvalidTOTP.Error()})
}

// checkSecondFactor 6 位數字視為 TOTP，每碼只能用一次；其他輸入比對備援碼，使用過的立即移除
func checkSecondFactor(ctx context.Context, db database.DB, cch cache.Cache, tf *model.TwoFactor, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if service.IsTOTPCode(code) {
		if !verifyTOTP(tf.Secret, code) {
			return false, nil
		}
		return markTOTPUsed(ctx, cch, tf.UserID, code)
	}
	remaining, ok := consumeBackupCode(tf.BackupCodes, code)
	if !ok {
		return false, nil
	}
	if err := replaceBackupCodes(ctx, db, tf.UserID, remaining); err != nil {
		return false, err
	}
	return true, nil
}
