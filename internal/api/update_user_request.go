// File: internal/api/update_user_request.go
package api

// swagger:model api.UpdateUserRequest
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100" example:"Anna Bianchi"`
	Email    string `json:"email" validate:"required,email,max=255" example:"anna@example.it"`
	IsAdmin  bool   `json:"is_admin" example:"false"`
	IsActive bool   `json:"is_active" example:"true"`
}

// swagger:model api.UpdateProfileRequest
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,max=100" example:"Anna Bianchi"`
	Email string `json:"email" validate:"required,email,max=255" example:"anna@example.it"`
}

// swagger:model api.ResetPasswordResponse
type ResetPasswordResponse struct {
	Password string `json:"password" example:"x7Kp2mQa9RtZ"`
}
