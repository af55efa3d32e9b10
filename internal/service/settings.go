package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

// 安全設定的 key
const (
	KeyRequire2FAAdmin   = "require_2fa_admin"
	KeySessionTTLHours   = "session_ttl_hours"
	KeyPasswordMinLength = "password_min_length"
	KeyMaxLoginAttempts  = "max_login_attempts"
	KeyLockoutMinutes    = "lockout_minutes"
)

// 一般設定的 key
const (
	KeySiteName          = "site_name"
	KeyContactEmail      = "contact_email"
	KeyContactPhone      = "contact_phone"
	KeyWhatsAppNumber    = "whatsapp_number"
	KeyAddress           = "address"
	KeyVATNumber         = "vat_number"
	KeyNotificationEmail = "notification_email"
)

// SecuritySettings 登入與密碼相關設定
type SecuritySettings struct {
	Require2FAAdmin   bool `json:"require_2fa_admin"`
	SessionTTLHours   int  `json:"session_ttl_hours" validate:"min=1,max=720"`
	PasswordMinLength int  `json:"password_min_length" validate:"min=6,max=128"`
	MaxLoginAttempts  int  `json:"max_login_attempts" validate:"min=0,max=100"`
	LockoutMinutes    int  `json:"lockout_minutes" validate:"min=1,max=1440"`
}

// DefaultSecuritySettings 與 migration 寫入的預設值一致
func DefaultSecuritySettings() SecuritySettings {
	return SecuritySettings{
		Require2FAAdmin:   false,
		SessionTTLHours:   24,
		PasswordMinLength: 8,
		MaxLoginAttempts:  5,
		LockoutMinutes:    15,
	}
}

func (s SecuritySettings) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLHours) * time.Hour
}

func (s SecuritySettings) LockoutWindow() time.Duration {
	return time.Duration(s.LockoutMinutes) * time.Minute
}

// ToMap 轉回設定表的字串值
func (s SecuritySettings) ToMap() map[string]string {
	return map[string]string{
		KeyRequire2FAAdmin:   strconv.FormatBool(s.Require2FAAdmin),
		KeySessionTTLHours:   strconv.Itoa(s.SessionTTLHours),
		KeyPasswordMinLength: strconv.Itoa(s.PasswordMinLength),
		KeyMaxLoginAttempts:  strconv.Itoa(s.MaxLoginAttempts),
		KeyLockoutMinutes:    strconv.Itoa(s.LockoutMinutes),
	}
}

// ParseSecuritySettings 將字串值轉型；缺少或無法解析的值使用預設
func ParseSecuritySettings(values map[string]string) SecuritySettings {
	s := DefaultSecuritySettings()
	if v, ok := values[KeyRequire2FAAdmin]; ok {
		if b, err := cast.ToBoolE(v); err == nil {
			s.Require2FAAdmin = b
		}
	}
	intSetting(values, KeySessionTTLHours, &s.SessionTTLHours)
	intSetting(values, KeyPasswordMinLength, &s.PasswordMinLength)
	intSetting(values, KeyMaxLoginAttempts, &s.MaxLoginAttempts)
	intSetting(values, KeyLockoutMinutes, &s.LockoutMinutes)
	return s
}

func intSetting(values map[string]string, key string, dst *int) {
	v, ok := values[key]
	if !ok {
		return
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return
	}
	*dst = n
}

// LoadSecuritySettings 從資料庫讀取安全設定
func LoadSecuritySettings(ctx context.Context, db database.DB) (SecuritySettings, error) {
	values, err := store.SettingsMap(ctx, db, model.SettingsSecurity, false)
	if err != nil {
		return DefaultSecuritySettings(), fmt.Errorf("load security settings: %w", err)
	}
	return ParseSecuritySettings(values), nil
}

// GeneralSettings 網站基本資料
type GeneralSettings struct {
	SiteName          string `json:"site_name"`
	ContactEmail      string `json:"contact_email"`
	ContactPhone      string `json:"contact_phone"`
	WhatsAppNumber    string `json:"whatsapp_number"`
	Address           string `json:"address"`
	VATNumber         string `json:"vat_number"`
	NotificationEmail string `json:"notification_email"`
}

func ParseGeneralSettings(values map[string]string) GeneralSettings {
	return GeneralSettings{
		SiteName:          values[KeySiteName],
		ContactEmail:      values[KeyContactEmail],
		ContactPhone:      values[KeyContactPhone],
		WhatsAppNumber:    values[KeyWhatsAppNumber],
		Address:           values[KeyAddress],
		VATNumber:         values[KeyVATNumber],
		NotificationEmail: values[KeyNotificationEmail],
	}
}

func LoadGeneralSettings(ctx context.Context, db database.DB) (GeneralSettings, error) {
	values, err := store.SettingsMap(ctx, db, model.SettingsGeneral, false)
	if err != nil {
		return GeneralSettings{}, fmt.Errorf("load general settings: %w", err)
	}
	return ParseGeneralSettings(values), nil
}
