package model

import "time"

const (
	RequestInfo      = "info"
	RequestTestDrive = "test_drive"
	RequestQuote     = "quote"
	RequestRental    = "rental"

	RequestNew       = "new"
	RequestContacted = "contacted"
	RequestClosed    = "closed"
)

// Request 前台表單送出的潛在客戶需求
type Request struct {
	ID               int       `db:"id" json:"id"`
	Reference        string    `db:"reference" json:"reference"`
	Type             string    `db:"type" json:"type"`
	VehicleID        *int      `db:"vehicle_id" json:"vehicle_id,omitempty"`
	RentalOptionID   *int      `db:"rental_option_id" json:"rental_option_id,omitempty"`
	ProvinceID       *int      `db:"province_id" json:"province_id,omitempty"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	Message          string    `db:"message" json:"message"`
	PrivacyConsent   bool      `db:"privacy_consent" json:"privacy_consent"`
	MarketingConsent bool      `db:"marketing_consent" json:"marketing_consent"`
	Status           string    `db:"status" json:"status"`
	Notes            string    `db:"notes" json:"notes"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	VehicleTitle string `db:"-" json:"vehicle_title,omitempty"`
	ProvinceName string `db:"-" json:"province_name,omitempty"`
}

// FullName 回傳「名 姓」
func (r Request) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
