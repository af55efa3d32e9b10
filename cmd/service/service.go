// @title        O2O Catalogo API
// @version      1.0
// @description  車輛銷售與長期租賃 (NLT / RTB) 目錄的後端 API，包含前台查詢、需求表單與後台管理
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	_ "github.com/A123lny/o2o-catalogo-sub002/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/config"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/logger"
	"github.com/A123lny/o2o-catalogo-sub002/internal/middleware"
	"github.com/A123lny/o2o-catalogo-sub002/internal/notify"
	"github.com/A123lny/o2o-catalogo-sub002/internal/router"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/worker"
)

const (
	notifyQueueSize = 100
	shutdownTimeout = 10 * time.Second
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.Load
	newLogger       = logger.New
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	newWorkerPool   = worker.NewPool
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	notifyContext   = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
	exitFunc = os.Exit
)

// requestLogger 將每個請求以結構化日誌輸出
func requestLogger(log logger.ILogger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
				logger.String("remote_ip", v.RemoteIP),
			}
			if v.RequestID != "" {
				fields = append(fields, logger.String("request_id", v.RequestID))
			}
			if v.Status >= http.StatusInternalServerError {
				log.Warning("request", fields...)
				return nil
			}
			log.Debug("request", fields...)
			return nil
		},
	})
}

func newServer(log logger.ILogger, deps router.Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Use(echomw.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomw.Recover())

	router.Setup(e, deps)

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return e
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("設定載入失敗: %w", err)
	}

	lgr, err := newLogger(cfg.ServiceName, cfg.LoggerLevel)
	if err != nil {
		return fmt.Errorf("logger 初始化失敗: %w", err)
	}
	defer func() { _ = lgr.Sync() }()

	service.SetJWTSecret(cfg.JWTSecret)

	db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %w", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %w", err)
	}
	defer rdb.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %w", err)
	}

	wp := newWorkerPool(cfg.WorkerCount, notifyQueueSize, lgr.With(logger.String("component", "worker")))
	defer wp.Stop()

	e := newServer(lgr, router.Deps{
		DB:            db,
		Cache:         rdb,
		Notifier:      notify.NewLeadNotifier(db, wp, lgr.With(logger.String("component", "notify"))),
		PublicBaseURL: cfg.PublicBaseURL,
		TOTPIssuer:    cfg.TOTPIssuer,
	})

	ctx, stop := notifyContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- startServer(e, cfg.Addr()) }()
	lgr.Info("服務啟動", logger.String("addr", cfg.Addr()))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("服務啟動失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lgr.Info("收到結束訊號，停止服務")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服務關閉失敗: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
