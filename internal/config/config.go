// Package config 負責讀取服務啟動所需的設定 (環境變數、.env 與 app.yaml)
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 可用的設定鍵
const (
	KeyDatabaseURL   = "database_url"
	KeyRedisAddr     = "redis_addr"
	KeyRedisPassword = "redis_password"
	KeyRedisDB       = "redis_db"
	KeyJWTSecret     = "jwt_secret"
	KeyAppPort       = "app_port"
	KeyWorkerCount   = "worker_count"
	KeyLoggerLevel   = "logger_level"
	KeyServiceName   = "service_name"
	KeyTOTPIssuer    = "totp_issuer"
	KeyPublicBaseURL = "public_base_url"
)

var envBindings = map[string]string{
	KeyDatabaseURL:   "DATABASE_URL",
	KeyRedisAddr:     "REDIS_ADDR",
	KeyRedisPassword: "REDIS_PASSWORD",
	KeyRedisDB:       "REDIS_DB",
	KeyJWTSecret:     "JWT_SECRET",
	KeyAppPort:       "APP_PORT",
	KeyWorkerCount:   "WORKER_COUNT",
	KeyLoggerLevel:   "LOGGER_LEVEL",
	KeyServiceName:   "SERVICE_NAME",
	KeyTOTPIssuer:    "TOTP_ISSUER",
	KeyPublicBaseURL: "PUBLIC_BASE_URL",
}

// Config 服務執行期設定
type Config struct {
	ServiceName string
	LoggerLevel string
	AppPort     int
	WorkerCount int

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	TOTPIssuer    string
	PublicBaseURL string
}

// Addr 回傳 echo 監聽位址
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.AppPort)
}

// 測試可覆寫
var loadDotEnv = func() error { return godotenv.Load(".env") }

// Load 依序讀取 .env、app.yaml 與環境變數，環境變數優先
func Load() (Config, error) {
	_ = loadDotEnv()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault(KeyAppPort, 8080)
	v.SetDefault(KeyWorkerCount, 2)
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyLoggerLevel, "info")
	v.SetDefault(KeyServiceName, "o2o-catalogo")
	v.SetDefault(KeyTOTPIssuer, "O2O Catalogo")
	v.SetDefault(KeyPublicBaseURL, "http://localhost:8080")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("讀取 app.yaml 失敗: %w", err)
		}
	}

	cfg := Config{
		ServiceName:   v.GetString(KeyServiceName),
		LoggerLevel:   v.GetString(KeyLoggerLevel),
		AppPort:       v.GetInt(KeyAppPort),
		WorkerCount:   v.GetInt(KeyWorkerCount),
		DatabaseURL:   v.GetString(KeyDatabaseURL),
		RedisAddr:     v.GetString(KeyRedisAddr),
		RedisPassword: v.GetString(KeyRedisPassword),
		RedisDB:       v.GetInt(KeyRedisDB),
		JWTSecret:     v.GetString(KeyJWTSecret),
		TOTPIssuer:    v.GetString(KeyTOTPIssuer),
		PublicBaseURL: v.GetString(KeyPublicBaseURL),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("環境變數 DATABASE_URL 未設定")
	}
	if c.RedisAddr == "" {
		return errors.New("環境變數 REDIS_ADDR 未設定")
	}
	if c.JWTSecret == "" {
		return errors.New("環境變數 JWT_SECRET 未設定")
	}
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return fmt.Errorf("無效的 APP_PORT: %d", c.AppPort)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("無效的 WORKER_COUNT: %d", c.WorkerCount)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("無效的 REDIS_DB: %d", c.RedisDB)
	}
	return nil
}
