package model

import "time"

const (
	FuelPetrol       = "petrol"
	FuelDiesel       = "diesel"
	FuelHybrid       = "hybrid"
	FuelPluginHybrid = "plugin_hybrid"
	FuelElectric     = "electric"
	FuelLPG          = "lpg"
	FuelMethane      = "methane"

	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"

	ListingSale   = "sale"
	ListingRental = "rental"
	ListingBoth   = "both"

	VehicleAvailable = "available"
	VehicleReserved  = "reserved"
	VehicleSold      = "sold"

	// ContractNLT 長期租賃 (Noleggio a Lungo Termine)
	ContractNLT = "NLT"
	// ContractRTB 租後購 (Rent to Buy)
	ContractRTB = "RTB"
)

type Vehicle struct {
	ID           int       `db:"id" json:"id"`
	Slug         string    `db:"slug" json:"slug"`
	BrandID      int       `db:"brand_id" json:"brand_id"`
	CategoryID   *int      `db:"category_id" json:"category_id,omitempty"`
	Model        string    `db:"model" json:"model"`
	Version      string    `db:"version" json:"version"`
	Year         int       `db:"year" json:"year"`
	FuelType     string    `db:"fuel_type" json:"fuel_type"`
	Transmission string    `db:"transmission" json:"transmission"`
	PowerHP      int       `db:"power_hp" json:"power_hp"`
	MileageKM    int       `db:"mileage_km" json:"mileage_km"`
	Doors        int       `db:"doors" json:"doors"`
	Seats        int       `db:"seats" json:"seats"`
	Color        string    `db:"color" json:"color"`
	PriceCents   *int64    `db:"price_cents" json:"price_cents,omitempty"`
	ListingType  string    `db:"listing_type" json:"listing_type"`
	Status       string    `db:"status" json:"status"`
	Description  string    `db:"description" json:"description"`
	Images       []string  `db:"images" json:"images"`
	IsFeatured   bool      `db:"is_featured" json:"is_featured"`
	IsPublished  bool      `db:"is_published" json:"is_published"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// 以下欄位由 JOIN 取得，不寫回資料表
	BrandName       string `db:"-" json:"brand_name"`
	BrandSlug       string `db:"-" json:"brand_slug"`
	CategoryName    string `db:"-" json:"category_name,omitempty"`
	CategorySlug    string `db:"-" json:"category_slug,omitempty"`
	MinMonthlyCents *int64 `db:"-" json:"min_monthly_cents,omitempty"`
}

type RentalOption struct {
	ID                int       `db:"id" json:"id"`
	VehicleID         int       `db:"vehicle_id" json:"vehicle_id"`
	ContractType      string    `db:"contract_type" json:"contract_type"`
	DurationMonths    int       `db:"duration_months" json:"duration_months"`
	AnnualKM          int       `db:"annual_km" json:"annual_km"`
	DownPaymentCents  int64     `db:"down_payment_cents" json:"down_payment_cents"`
	MonthlyPriceCents int64     `db:"monthly_price_cents" json:"monthly_price_cents"`
	FinalPaymentCents int64     `db:"final_payment_cents" json:"final_payment_cents"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
