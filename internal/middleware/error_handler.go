package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/logger"
)

// ErrorHandler 將錯誤統一輸出為 api.ErrorResponse；5xx 只回傳通用訊息並記錄內部原因
func ErrorHandler(log logger.ILogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var internal error = err

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Internal != nil {
				internal = he.Internal
			}
			if code < http.StatusInternalServerError {
				message = fmt.Sprint(he.Message)
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				logger.String("method", c.Request().Method),
				logger.String("path", c.Path()),
				logger.Int("status", code),
				logger.Error(internal),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, api.ErrorResponse{Message: message})
		}
		if err != nil {
			log.Warning("write error response", logger.Error(err))
		}
	}
}
