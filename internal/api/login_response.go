package api

// LoginResponse 登入結果；需要 2FA 時只回傳 challenge_token
// swagger:model api.LoginResponse
type LoginResponse struct {
	AccessToken       string `json:"access_token,omitempty" example:"eyJhbGciOiJIUzI1NiIs..."`
	TokenType         string `json:"token_type,omitempty" example:"Bearer"`
	ExpiresIn         int    `json:"expires_in,omitempty" example:"86400"`
	TwoFactorRequired bool   `json:"two_factor_required"`
	ChallengeToken    string `json:"challenge_token,omitempty" example:"3f1c0a9e-..."`
	// 管理員被要求啟用 2FA 但尚未設定
	TwoFactorSetupRequired bool `json:"two_factor_setup_required,omitempty"`
}
