package api

// CreateUserRequest 密碼留空時由系統產生並在回應中回傳一次
// swagger:model api.CreateUserRequest
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100" example:"Anna Bianchi"`
	Email    string `json:"email" validate:"required,email,max=255" example:"anna@example.it"`
	Password string `json:"password" validate:"omitempty,max=128" example:"Secret123"`
	IsAdmin  bool   `json:"is_admin" example:"false"`
	IsActive *bool  `json:"is_active" example:"true"`
}

// swagger:model api.CreateUserResponse
type CreateUserResponse struct {
	User              UserResponse `json:"user"`
	GeneratedPassword string       `json:"generated_password,omitempty" example:"x7Kp2mQa9RtZ"`
}
