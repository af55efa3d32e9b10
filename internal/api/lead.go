package api

import "github.com/A123lny/o2o-catalogo-sub002/internal/model"

// CreateLeadRequest 前台聯絡表單
// swagger:model api.CreateLeadRequest
type CreateLeadRequest struct {
	Type             string `json:"type" validate:"required,oneof=info test_drive quote rental" example:"test_drive"`
	VehicleID        *int   `json:"vehicle_id" validate:"omitempty,min=1" example:"12"`
	RentalOptionID   *int   `json:"rental_option_id" validate:"omitempty,min=1" example:"3"`
	ProvinceID       *int   `json:"province_id" validate:"omitempty,min=1" example:"15"`
	FirstName        string `json:"first_name" validate:"required,max=100" example:"Giulia"`
	LastName         string `json:"last_name" validate:"required,max=100" example:"Verdi"`
	Email            string `json:"email" validate:"required,email,max=255" example:"giulia@example.it"`
	Phone            string `json:"phone" validate:"required,min=6,max=30" example:"+39 333 1234567"`
	Message          string `json:"message" validate:"max=2000" example:"Vorrei prenotare un test drive"`
	PrivacyConsent   bool   `json:"privacy_consent" validate:"required" example:"true"`
	MarketingConsent bool   `json:"marketing_consent" example:"false"`
}

// swagger:model api.CreateLeadResponse
type CreateLeadResponse struct {
	Reference string `json:"reference" example:"REQ-2N8Q4ZK1"`
}

// swagger:model api.RequestListQuery
type RequestListQuery struct {
	Status  string `query:"status" validate:"omitempty,oneof=new contacted closed" example:"new"`
	Type    string `query:"type" validate:"omitempty,oneof=info test_drive quote rental" example:"quote"`
	Q       string `query:"q" validate:"omitempty,max=100" example:"rossi"`
	Page    int    `query:"page" validate:"omitempty,min=1" example:"1"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100" example:"20"`
}

// swagger:model api.RequestListResponse
type RequestListResponse struct {
	Items      []model.Request `json:"items"`
	Total      int             `json:"total" example:"42"`
	Page       int             `json:"page" example:"1"`
	PerPage    int             `json:"per_page" example:"20"`
	TotalPages int             `json:"total_pages" example:"3"`
}

// swagger:model api.UpdateRequestStatusRequest
type UpdateRequestStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=new contacted closed" example:"contacted"`
	Notes  *string `json:"notes" validate:"omitempty,max=4000" example:"Richiamato il 12/03"`
}

// TotalPages 依總筆數與每頁筆數計算頁數
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
