package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

func me(c echo.Context, db database.DB) (*model.User, error) {
	id, ok := handler.CurrentUserID(c)
	if !ok {
		return nil, c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid or missing token"})
	}
	user, err := getUserByID(c.Request().Context(), db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "user no longer exists"})
	}
	if err != nil {
		return nil, handler.Internal(err)
	}
	return user, nil
}

// GetMeHandler 取得當前使用者資訊
// @Summary     Get current user info
// @Description 透過 JWT Token 取得當前使用者詳細資訊 (含 2FA 是否啟用)
// @Tags        me
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/me [get]
func GetMeHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := me(c, db)
		if user == nil {
			return err
		}
		resp, err := userResponse(c.Request().Context(), db, *user)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// UpdateMeHandler 更新當前使用者的姓名與 Email
// @Summary     Update own profile
// @Tags        me
// @Accept      json
// @Produce     json
// @Param       body body     api.UpdateProfileRequest true "個人資料"
// @Success     200  {object} api.UserResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse "Email 已被使用"
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/me [put]
func UpdateMeHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := me(c, db)
		if user == nil {
			return err
		}
		var req api.UpdateProfileRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		user.Name = strings.TrimSpace(req.Name)
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if err := updateProfile(ctx, db, user.ID, user.Name, user.Email); err != nil {
			return handler.StoreError(c, err, "user")
		}
		resp, err := userResponse(ctx, db, *user)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// UpdateMyPasswordHandler 更新當前使用者密碼
// @Summary     Update own password
// @Description 驗證舊密碼並更新為新密碼；新密碼需符合安全設定中的密碼規則
// @Tags        me
// @Accept      json
// @Produce     json
// @Param       body body api.UpdateMyPasswordRequest true "舊密碼與新密碼"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /auth/me/password [patch]
func UpdateMyPasswordHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := me(c, db)
		if user == nil {
			return err
		}
		var req api.UpdateMyPasswordRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		if err := comparePassword(user.PasswordHash, req.OldPassword); err != nil {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid current password"})
		}
		sec, _ := loadSecuritySettings(ctx, db)
		if err := validatePassword(req.NewPassword, sec.PasswordMinLength); err != nil {
			return handler.BadRequest(c, err.Error())
		}

		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			return handler.Internal(err)
		}
		if err := updateUserPassword(ctx, db, user.ID, hash); err != nil {
			return handler.StoreError(c, err, "user")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
