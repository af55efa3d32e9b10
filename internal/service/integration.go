package service

import (
	"fmt"
	"strings"

	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// SecretMask 回傳給前端的遮罩值；送回此值表示「不變更」
const SecretMask = "********"

// integrationFields 每個 provider 可用的設定欄位，true 表示為機敏資料
var integrationFields = map[string]map[string]bool{
	model.ProviderSMTP: {
		"host": false, "port": false, "username": false, "password": true,
		"from_address": false, "from_name": false, "tls": false,
	},
	model.ProviderStripe: {
		"publishable_key": false, "secret_key": true, "webhook_secret": true, "currency": false,
	},
	model.ProviderPayPal: {
		"client_id": false, "client_secret": true, "mode": false, "currency": false,
	},
	model.ProviderGoogle: {
		"client_id": false, "client_secret": true,
	},
	model.ProviderFacebook: {
		"client_id": false, "client_secret": true,
	},
	model.ProviderTelegram: {
		"bot_token": true, "chat_id": false,
	},
}

// publicPaymentFields 可公開給前台的付款設定
var publicPaymentFields = map[string][]string{
	model.ProviderStripe: {"publishable_key", "currency"},
	model.ProviderPayPal: {"client_id", "mode", "currency"},
}

// KnownProvider 回報 provider 是否受支援
func KnownProvider(provider string) bool {
	_, ok := integrationFields[provider]
	return ok
}

// MaskIntegration 回傳機敏欄位已遮罩的副本
func MaskIntegration(in model.Integration) model.Integration {
	fields := integrationFields[in.Provider]
	masked := make(map[string]string, len(in.Config))
	for k, v := range in.Config {
		if fields[k] && v != "" {
			v = SecretMask
		}
		masked[k] = v
	}
	in.Config = masked
	return in
}

// MergeIntegrationConfig 合併新舊設定：未知欄位回傳錯誤，遮罩值保留舊值
func MergeIntegrationConfig(provider string, current, incoming map[string]string) (map[string]string, error) {
	fields, ok := integrationFields[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	merged := make(map[string]string, len(fields))
	for k, v := range current {
		if _, known := fields[k]; known {
			merged[k] = v
		}
	}
	for k, v := range incoming {
		secret, known := fields[k]
		if !known {
			return nil, fmt.Errorf("unknown field %q for %s", k, provider)
		}
		if secret && v == SecretMask {
			continue
		}
		merged[k] = strings.TrimSpace(v)
	}
	return merged, nil
}

// PublicPaymentConfig 取出付款整合可公開的設定
func PublicPaymentConfig(in model.Integration) map[string]string {
	out := map[string]string{}
	for _, k := range publicPaymentFields[in.Provider] {
		if v := in.Config[k]; v != "" {
			out[k] = v
		}
	}
	return out
}
