package api

// swagger:model api.TwoFactorSetupResponse
type TwoFactorSetupResponse struct {
	Secret     string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	OTPAuthURL string `json:"otpauth_url" example:"otpauth://totp/O2O%20Catalogo:admin@example.it?..."`
	QRCode     string `json:"qr_code" example:"data:image/png;base64,iVBOR..."`
}

// swagger:model api.TwoFactorCodeRequest
type TwoFactorCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric" example:"123456"`
}

// swagger:model api.TwoFactorDisableRequest
type TwoFactorDisableRequest struct {
	Password string `json:"password" validate:"required" example:"Secret123"`
	Code     string `json:"code" validate:"required,min=6,max=16" example:"123456"`
}

// swagger:model api.BackupCodesResponse
type BackupCodesResponse struct {
	Codes []string `json:"backup_codes" example:"k7mp-2xq9,a3bc-9def"`
}

// swagger:model api.TwoFactorStatusResponse
type TwoFactorStatusResponse struct {
	Enabled              bool `json:"enabled"`
	Pending              bool `json:"pending"`
	Required             bool `json:"required"`
	BackupCodesRemaining int  `json:"backup_codes_remaining" example:"8"`
}
