package router

import (
	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler/admin"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler/auth"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler/catalog"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler/users"
	"github.com/A123lny/o2o-catalogo-sub002/internal/middleware"
)

// Deps 路由需要的外部資源
type Deps struct {
	DB       database.DB
	Cache    cache.Cache
	Notifier catalog.Notifier

	// PublicBaseURL 用於 OAuth callback 網址
	PublicBaseURL string
	TOTPIssuer    string
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	db, cch := d.DB, d.Cache
	api := e.Group("/api")

	// 健康檢查
	api.GET("/ping", handler.PingHandler(db, cch))

	// 前台目錄
	api.GET("/vehicles", catalog.ListVehiclesHandler(db))
	api.GET("/vehicles/:slug", catalog.GetVehicleHandler(db))
	api.GET("/brands", catalog.ListBrandsHandler(db, cch))
	api.GET("/categories", catalog.ListCategoriesHandler(db, cch))
	api.GET("/provinces", catalog.ListProvincesHandler(db, cch))
	api.POST("/requests", catalog.CreateRequestHandler(db, d.Notifier))
	api.GET("/settings/public", catalog.PublicSettingsHandler(db, cch))
	api.GET("/payments/config", catalog.PaymentConfigHandler(db, cch))

	// 登入
	apiAuth := api.Group("/auth")
	apiAuth.POST("/login", auth.LoginHandler(db, cch))
	apiAuth.POST("/2fa/login", auth.TwoFactorLoginHandler(db, cch))
	apiAuth.GET("/social/:provider", auth.SocialRedirectHandler(db, cch, d.PublicBaseURL))
	apiAuth.GET("/social/:provider/callback", auth.SocialCallbackHandler(db, cch, d.PublicBaseURL))

	// 當前使用者
	apiMe := apiAuth.Group("", middleware.RequireAuth(db))
	apiMe.GET("/me", users.GetMeHandler(db))
	apiMe.PUT("/me", users.UpdateMeHandler(db))
	apiMe.PATCH("/me/password", users.UpdateMyPasswordHandler(db))
	apiMe.GET("/2fa/status", auth.TwoFactorStatusHandler(db))
	apiMe.POST("/2fa/setup", auth.TwoFactorSetupHandler(db, d.TOTPIssuer))
	apiMe.POST("/2fa/verify", auth.TwoFactorVerifyHandler(db))
	apiMe.POST("/2fa/disable", auth.TwoFactorDisableHandler(db, cch))
	apiMe.POST("/2fa/backup-codes", auth.BackupCodesHandler(db))

	// 後台 (管理員專屬)
	apiAdmin := api.Group("/admin", middleware.RequireAdmin(db))

	apiAdmin.GET("/vehicles", admin.ListVehiclesHandler(db))
	apiAdmin.POST("/vehicles", admin.CreateVehicleHandler(db))
	apiAdmin.GET("/vehicles/:id", admin.GetVehicleHandler(db))
	apiAdmin.PUT("/vehicles/:id", admin.UpdateVehicleHandler(db))
	apiAdmin.DELETE("/vehicles/:id", admin.DeleteVehicleHandler(db))
	apiAdmin.PATCH("/vehicles/:id/publish", admin.PublishVehicleHandler(db))
	apiAdmin.GET("/vehicles/:id/rental-options", admin.ListRentalOptionsHandler(db))
	apiAdmin.POST("/vehicles/:id/rental-options", admin.CreateRentalOptionHandler(db))
	apiAdmin.PUT("/vehicles/:id/rental-options/:option_id", admin.UpdateRentalOptionHandler(db))
	apiAdmin.DELETE("/vehicles/:id/rental-options/:option_id", admin.DeleteRentalOptionHandler(db))

	apiAdmin.GET("/brands", admin.ListBrandsHandler(db))
	apiAdmin.POST("/brands", admin.SaveBrandHandler(db, cch))
	apiAdmin.PUT("/brands/:id", admin.SaveBrandHandler(db, cch))
	apiAdmin.DELETE("/brands/:id", admin.DeleteBrandHandler(db, cch))
	apiAdmin.GET("/categories", admin.ListCategoriesHandler(db))
	apiAdmin.POST("/categories", admin.SaveCategoryHandler(db, cch))
	apiAdmin.PUT("/categories/:id", admin.SaveCategoryHandler(db, cch))
	apiAdmin.DELETE("/categories/:id", admin.DeleteCategoryHandler(db, cch))
	apiAdmin.GET("/provinces", admin.ListProvincesHandler(db))
	apiAdmin.POST("/provinces", admin.SaveProvinceHandler(db, cch))
	apiAdmin.PUT("/provinces/:id", admin.SaveProvinceHandler(db, cch))
	apiAdmin.DELETE("/provinces/:id", admin.DeleteProvinceHandler(db, cch))

	apiAdmin.GET("/requests", admin.ListRequestsHandler(db))
	apiAdmin.GET("/requests/stats", admin.RequestStatsHandler(db))
	apiAdmin.GET("/requests/:id", admin.GetRequestHandler(db))
	apiAdmin.PATCH("/requests/:id", admin.UpdateRequestStatusHandler(db))
	apiAdmin.DELETE("/requests/:id", admin.DeleteRequestHandler(db))

	apiAdmin.GET("/users", users.ListUsersHandler(db))
	apiAdmin.POST("/users", users.CreateUserHandler(db))
	apiAdmin.GET("/users/:id", users.GetUserHandler(db))
	apiAdmin.PUT("/users/:id", users.UpdateUserHandler(db))
	apiAdmin.DELETE("/users/:id", users.DeleteUserHandler(db))
	apiAdmin.POST("/users/:id/reset-password", users.ResetUserPasswordHandler(db))
	apiAdmin.DELETE("/users/:id/2fa", users.DeleteUserTwoFactorHandler(db))

	apiAdmin.GET("/settings", admin.ListSettingsHandler(db))
	apiAdmin.PUT("/settings", admin.UpdateSettingsHandler(db, cch))
	apiAdmin.GET("/settings/security", admin.GetSecuritySettingsHandler(db))
	apiAdmin.PUT("/settings/security", admin.UpdateSecuritySettingsHandler(db))

	apiAdmin.GET("/integrations", admin.ListIntegrationsHandler(db))
	apiAdmin.GET("/integrations/:provider", admin.GetIntegrationHandler(db))
	apiAdmin.PUT("/integrations/:provider", admin.UpdateIntegrationHandler(db, cch))
	apiAdmin.POST("/integrations/:provider/test", admin.TestIntegrationHandler(db, d.PublicBaseURL))
}
