// Package users 管理員的帳號管理與目前使用者的個人資料
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

// 自動產生密碼的長度
const generatedPasswordLength = 12

var (
	hashPassword         = service.HashPassword
	comparePassword      = service.ComparePassword
	generatePassword     = service.GeneratePassword
	validatePassword     = service.ValidatePasswordPolicy
	loadSecuritySettings = service.LoadSecuritySettings

	listUsers          = store.ListUsers
	createUser         = store.CreateUser
	getUserByID        = store.GetUserByID
	updateUser         = store.UpdateUser
	updateProfile      = store.UpdateProfile
	updateUserPassword = store.UpdateUserPassword
	deleteUser         = store.DeleteUser
	getTwoFactor       = store.GetTwoFactor
	deleteTwoFactor    = store.DeleteTwoFactor
)

func twoFactorEnabled(ctx context.Context, db database.DB, userID int) (bool, error) {
	tf, err := getTwoFactor(ctx, db, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tf.Enabled, nil
}

func userResponse(ctx context.Context, db database.DB, u model.User) (api.UserResponse, error) {
	enabled, err := twoFactorEnabled(ctx, db, u.ID)
	if err != nil {
		return api.UserResponse{}, err
	}
	return api.NewUserResponse(u, enabled), nil
}

// @Summary     List users
// @Description 列出所有後台帳號
// @Tags        users
// @Produce     json
// @Success     200 {array}  api.UserResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		list, err := listUsers(ctx, db)
		if err != nil {
			return handler.Internal(err)
		}
		resp := make([]api.UserResponse, 0, len(list))
		for _, u := range list {
			r, err := userResponse(ctx, db, u)
			if err != nil {
				return handler.Internal(err)
			}
			resp = append(resp, r)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// @Summary     Create a new user
// @Description 建立後台帳號 (Email 會自動轉小寫)；密碼留空時系統產生一組並只在此回應中顯示
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateUserRequest true "帳號資料"
// @Success     201  {object} api.CreateUserResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse "Email 已存在"
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/users [post]
func CreateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateUserRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		password, generated := req.Password, ""
		if password == "" {
			p, err := generatePassword(generatedPasswordLength)
			if err != nil {
				return handler.Internal(err)
			}
			password, generated = p, p
		} else {
			sec, _ := loadSecuritySettings(ctx, db)
			if err := validatePassword(password, sec.PasswordMinLength); err != nil {
				return handler.BadRequest(c, err.Error())
			}
		}

		hash, err := hashPassword(password)
		if err != nil {
			return handler.Internal(err)
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		user, err := createUser(ctx, db, &model.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			IsAdmin:      req.IsAdmin,
			IsActive:     active,
		})
		if err != nil {
			return handler.StoreError(c, err, "user")
		}

		return c.JSON(http.StatusCreated, api.CreateUserResponse{
			User:              api.NewUserResponse(*user, false),
			GeneratedPassword: generated,
		})
	}
}

// @Summary     Get a user by ID
// @Description 透過 ID 查詢並回傳使用者詳細資料
// @Tags        users
// @Produce     json
// @Param       id   path      int  true  "使用者 ID"
// @Success     200  {object}  api.UserResponse
// @Failure     400  {object}  api.ErrorResponse  "參數錯誤"
// @Failure     404  {object}  api.ErrorResponse  "使用者不存在"
// @Failure     500  {object}  api.ErrorResponse  "伺服器錯誤"
// @Security    ApiKeyAuth
// @Router      /admin/users/{id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid user ID")
		}
		ctx := c.Request().Context()
		user, err := getUserByID(ctx, db, id)
		if err != nil {
			return handler.StoreError(c, err, "user")
		}
		resp, err := userResponse(ctx, db, *user)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// @Summary     Update a user by ID
// @Description 更新姓名、Email、管理員與啟用狀態；不可停用或降級最後一位啟用中的管理員
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       id   path int                   true "使用者 ID"
// @Param       body body api.UpdateUserRequest true "帳號資料"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/users/{id} [put]
func UpdateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid user ID")
		}
		var req api.UpdateUserRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		err = updateUser(ctx, db, &model.User{
			ID:       id,
			Name:     strings.TrimSpace(req.Name),
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
			IsAdmin:  req.IsAdmin,
			IsActive: req.IsActive,
		})
		if errors.Is(err, store.ErrLastAdmin) {
			return c.JSON(http.StatusConflict, api.ErrorResponse{Message: "cannot demote or deactivate the last active administrator"})
		}
		if err != nil {
			return handler.StoreError(c, err, "user")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Delete a user by ID
// @Description 刪除帳號；不可刪除自己或最後一位啟用中的管理員
// @Tags        users
// @Param       id  path int true "使用者 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     409 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/users/{id} [delete]
func DeleteUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid user ID")
		}
		if me, _ := handler.CurrentUserID(c); me == id {
			return handler.BadRequest(c, "cannot delete your own account")
		}
		err = deleteUser(c.Request().Context(), db, id)
		if errors.Is(err, store.ErrLastAdmin) {
			return c.JSON(http.StatusConflict, api.ErrorResponse{Message: "cannot delete the last active administrator"})
		}
		if err != nil {
			return handler.StoreError(c, err, "user")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Reset a user's password
// @Description 產生新的隨機密碼並回傳 (只顯示一次)
// @Tags        users
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} api.ResetPasswordResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/users/{id}/reset-password [post]
func ResetUserPasswordHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid user ID")
		}
		password, err := generatePassword(generatedPasswordLength)
		if err != nil {
			return handler.Internal(err)
		}
		hash, err := hashPassword(password)
		if err != nil {
			return handler.Internal(err)
		}
		if err := updateUserPassword(c.Request().Context(), db, id, hash); err != nil {
			return handler.StoreError(c, err, "user")
		}
		return c.JSON(http.StatusOK, api.ResetPasswordResponse{Password: password})
	}
}

// @Summary     Remove a user's two-factor setup
// @Description 使用者遺失驗證器時由管理員清除 2FA，下次登入只需密碼
// @Tags        users
// @Param       id  path int true "使用者 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/users/{id}/2fa [delete]
func DeleteUserTwoFactorHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid user ID")
		}
		ctx := c.Request().Context()
		if _, err := getUserByID(ctx, db, id); err != nil {
			return handler.StoreError(c, err, "user")
		}
		if err := deleteTwoFactor(ctx, db, id); err != nil {
			return handler.Internal(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
