package api

import (
	"time"

	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// swagger:model api.UserResponse
type UserResponse struct {
	ID               int        `json:"id" example:"1"`
	Name             string     `json:"name" example:"Mario Rossi"`
	Email            string     `json:"email" example:"mario@example.it"`
	IsAdmin          bool       `json:"is_admin" example:"true"`
	IsActive         bool       `json:"is_active" example:"true"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewUserResponse 由 model.User 轉換
func NewUserResponse(u model.User, twoFactor bool) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		IsAdmin:          u.IsAdmin,
		IsActive:         u.IsActive,
		TwoFactorEnabled: twoFactor,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
	}
}
