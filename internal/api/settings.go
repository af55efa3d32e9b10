package api

// swagger:model api.UpdateSettingsRequest
type UpdateSettingsRequest struct {
	Group  string            `json:"group" validate:"required,oneof=general" example:"general"`
	Values map[string]string `json:"values" validate:"required,min=1,dive,keys,max=100,endkeys,max=2000"`
}

// swagger:model api.UpdateIntegrationRequest
type UpdateIntegrationRequest struct {
	Enabled bool              `json:"enabled" example:"true"`
	Config  map[string]string `json:"config" validate:"dive,keys,max=50,endkeys,max=2000"`
}

// swagger:model api.TestIntegrationRequest
type TestIntegrationRequest struct {
	// smtp 測試信收件者
	To string `json:"to" validate:"omitempty,email" example:"admin@example.it"`
}

// swagger:model api.PaymentProvider
type PaymentProvider struct {
	Provider string            `json:"provider" example:"stripe"`
	Config   map[string]string `json:"config"`
}

// swagger:model api.PaymentConfigResponse
type PaymentConfigResponse struct {
	Providers []PaymentProvider `json:"providers"`
}

// swagger:model api.SocialRedirectResponse
type SocialRedirectResponse struct {
	URL string `json:"url" example:"https://accounts.google.com/o/oauth2/auth?..."`
}

// swagger:model api.MessageResponse
type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}
