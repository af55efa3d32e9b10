package api

// swagger:model api.BrandRequest
type BrandRequest struct {
	Name      string `json:"name" validate:"required,max=100" example:"Fiat"`
	Slug      string `json:"slug" validate:"omitempty,max=120" example:"fiat"`
	LogoURL   string `json:"logo_url" validate:"omitempty,url" example:"https://cdn.example.it/fiat.svg"`
	IsActive  *bool  `json:"is_active" example:"true"`
	SortOrder int    `json:"sort_order" example:"0"`
}

// swagger:model api.CategoryRequest
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100" example:"SUV"`
	Slug        string `json:"slug" validate:"omitempty,max=120" example:"suv"`
	Description string `json:"description" example:"Sport Utility Vehicle"`
	IsActive    *bool  `json:"is_active" example:"true"`
	SortOrder   int    `json:"sort_order" example:"0"`
}

// swagger:model api.ProvinceRequest
type ProvinceRequest struct {
	Name   string `json:"name" validate:"required,max=100" example:"Milano"`
	Code   string `json:"code" validate:"required,len=2,alpha" example:"MI"`
	Region string `json:"region" validate:"max=100" example:"Lombardia"`
}
