package api

import "github.com/A123lny/o2o-catalogo-sub002/internal/model"

// VehicleListQuery 前台與後台共用的目錄查詢參數
// swagger:model api.VehicleListQuery
type VehicleListQuery struct {
	Brand        string `query:"brand" validate:"omitempty,max=120" example:"fiat"`
	Category     string `query:"category" validate:"omitempty,max=120" example:"suv"`
	FuelType     string `query:"fuel_type" validate:"omitempty,oneof=petrol diesel hybrid plugin_hybrid electric lpg methane" example:"hybrid"`
	Transmission string `query:"transmission" validate:"omitempty,oneof=manual automatic" example:"automatic"`
	ListingType  string `query:"listing_type" validate:"omitempty,oneof=sale rental both" example:"rental"`
	ContractType string `query:"contract_type" validate:"omitempty,oneof=NLT RTB" example:"NLT"`
	Status       string `query:"status" validate:"omitempty,oneof=available reserved sold" example:"available"`
	Q            string `query:"q" validate:"omitempty,max=100" example:"panda"`
	MinPrice     *int64 `query:"min_price" validate:"omitempty,min=0" example:"1000000"`
	MaxPrice     *int64 `query:"max_price" validate:"omitempty,min=0" example:"3000000"`
	MaxMonthly   *int64 `query:"max_monthly" validate:"omitempty,min=0" example:"40000"`
	MinYear      *int   `query:"min_year" validate:"omitempty,min=1900,max=2100" example:"2020"`
	MaxMileage   *int   `query:"max_mileage" validate:"omitempty,min=0" example:"50000"`
	Featured     *bool  `query:"featured" example:"true"`
	Published    *bool  `query:"published" example:"true"`
	Sort         string `query:"sort" validate:"omitempty,oneof=newest price_asc price_desc year_desc mileage_asc monthly_asc" example:"newest"`
	Page         int    `query:"page" validate:"omitempty,min=1" example:"1"`
	PerPage      int    `query:"per_page" validate:"omitempty,min=1,max=100" example:"12"`
}

// swagger:model api.VehicleListResponse
type VehicleListResponse struct {
	Items      []model.Vehicle `json:"items"`
	Total      int             `json:"total" example:"42"`
	Page       int             `json:"page" example:"1"`
	PerPage    int             `json:"per_page" example:"12"`
	TotalPages int             `json:"total_pages" example:"4"`
}

// swagger:model api.VehicleDetailResponse
type VehicleDetailResponse struct {
	model.Vehicle
	RentalOptions []model.RentalOption `json:"rental_options"`
}

// VehicleRequest 後台新增 / 修改車輛；slug 留空時由品牌、車型、版本產生
// swagger:model api.VehicleRequest
type VehicleRequest struct {
	Slug         string   `json:"slug" validate:"omitempty,max=200" example:"fiat-panda-hybrid"`
	BrandID      int      `json:"brand_id" validate:"required,min=1" example:"1"`
	CategoryID   *int     `json:"category_id" validate:"omitempty,min=1" example:"2"`
	Model        string   `json:"model" validate:"required,max=100" example:"Panda"`
	Version      string   `json:"version" validate:"max=150" example:"1.0 Hybrid City Life"`
	Year         int      `json:"year" validate:"required,min=1900,max=2100" example:"2024"`
	FuelType     string   `json:"fuel_type" validate:"required,oneof=petrol diesel hybrid plugin_hybrid electric lpg methane" example:"hybrid"`
	Transmission string   `json:"transmission" validate:"required,oneof=manual automatic" example:"manual"`
	PowerHP      int      `json:"power_hp" validate:"min=0,max=2000" example:"70"`
	MileageKM    int      `json:"mileage_km" validate:"min=0" example:"0"`
	Doors        int      `json:"doors" validate:"omitempty,min=1,max=7" example:"5"`
	Seats        int      `json:"seats" validate:"omitempty,min=1,max=9" example:"4"`
	Color        string   `json:"color" validate:"max=50" example:"bianco"`
	PriceCents   *int64   `json:"price_cents" validate:"omitempty,min=0" example:"1590000"`
	ListingType  string   `json:"listing_type" validate:"required,oneof=sale rental both" example:"both"`
	Status       string   `json:"status" validate:"omitempty,oneof=available reserved sold" example:"available"`
	Description  string   `json:"description" example:"Pronta consegna"`
	Images       []string `json:"images" validate:"max=30,dive,url" example:"https://cdn.example.it/panda.jpg"`
	IsFeatured   bool     `json:"is_featured" example:"false"`
	IsPublished  bool     `json:"is_published" example:"true"`
}

// swagger:model api.PublishRequest
type PublishRequest struct {
	Published bool `json:"published" example:"true"`
}

// swagger:model api.RentalOptionRequest
type RentalOptionRequest struct {
	ContractType      string `json:"contract_type" validate:"required,oneof=NLT RTB" example:"NLT"`
	DurationMonths    int    `json:"duration_months" validate:"required,min=1,max=120" example:"36"`
	AnnualKM          int    `json:"annual_km" validate:"required,min=1000,max=200000" example:"15000"`
	DownPaymentCents  int64  `json:"down_payment_cents" validate:"min=0" example:"300000"`
	MonthlyPriceCents int64  `json:"monthly_price_cents" validate:"required,min=1" example:"29900"`
	FinalPaymentCents int64  `json:"final_payment_cents" validate:"min=0" example:"0"`
}
