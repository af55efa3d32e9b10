package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

const ContextUserKey = "user"

// 測試可替換
var (
	verifyAccessToken = service.VerifyAccessToken
	getUserByID       = store.GetUserByID
)

func extractClaims(c echo.Context) (*service.CustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	claims, err := verifyAccessToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
	}
	return claims, nil
}

// RequireAuth 驗證 token 並重新讀取使用者，已停用或刪除的帳號立即失效
func RequireAuth(db database.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, db)
			if err != nil {
				return err
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}

// RequireAdmin 以資料庫中的 is_admin 為準，不信任 token 內的權限
func RequireAdmin(db database.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, db)
			if err != nil {
				return err
			}
			if !claims.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}

func authenticate(c echo.Context, db database.DB) (*service.CustomClaims, error) {
	claims, err := extractClaims(c)
	if err != nil {
		return nil, err
	}
	u, err := getUserByID(c.Request().Context(), db, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	if !u.IsActive {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "account disabled")
	}
	claims.IsAdmin = u.IsAdmin
	return claims, nil
}

// Claims 取出 RequireAuth 設定的使用者資訊；未經驗證時回傳 nil
func Claims(c echo.Context) *service.CustomClaims {
	claims, _ := c.Get(ContextUserKey).(*service.CustomClaims)
	return claims
}
