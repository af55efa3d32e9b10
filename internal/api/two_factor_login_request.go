package api

// swagger:model api.TwoFactorLoginRequest
type TwoFactorLoginRequest struct {
	ChallengeToken string `json:"challenge_token" validate:"required" example:"3f1c0a9e-..."`
	// TOTP 6 位數或 xxxx-xxxx 備援碼
	Code string `json:"code" validate:"required,min=6,max=16" example:"123456"`
}
