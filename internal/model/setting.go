package model

import "time"

const (
	SettingsGeneral  = "general"
	SettingsSecurity = "security"

	KindEmail        = "email"
	KindPayment      = "payment"
	KindSocial       = "social"
	KindNotification = "notification"

	ProviderSMTP     = "smtp"
	ProviderStripe   = "stripe"
	ProviderPayPal   = "paypal"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderTelegram = "telegram"
)

type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	Group     string    `db:"group_name" json:"group"`
	IsPublic  bool      `db:"is_public" json:"is_public"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Integration 第三方整合設定，Config 為 provider 專屬的鍵值
type Integration struct {
	Provider  string            `db:"provider" json:"provider"`
	Kind      string            `db:"kind" json:"kind"`
	Enabled   bool              `db:"enabled" json:"enabled"`
	Config    map[string]string `db:"config" json:"config"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}
