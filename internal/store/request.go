package store

import (
	"context"
	"strings"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// RequestFilter 後台需求列表的過濾條件
type RequestFilter struct {
	Status string
	Type   string
	Search string
	Page
}

const (
	requestColumns = `r.id, r.reference, r.type, r.vehicle_id, r.rental_option_id, r.province_id,
		r.first_name, r.last_name, r.email, r.phone, r.message, r.privacy_consent, r.marketing_consent,
		r.status, r.notes, r.created_at, r.updated_at,
		COALESCE(b.name || ' ' || v.model, ''), COALESCE(p.name, '')`

	requestFrom = `requests r
		LEFT JOIN vehicles v ON v.id = r.vehicle_id
		LEFT JOIN brands b ON b.id = v.brand_id
		LEFT JOIN provinces p ON p.id = r.province_id`
)

func scanRequest(row interface{ Scan(...any) error }) (*model.Request, error) {
	r := &model.Request{}
	err := row.Scan(
		&r.ID, &r.Reference, &r.Type, &r.VehicleID, &r.RentalOptionID, &r.ProvinceID,
		&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.Message, &r.PrivacyConsent, &r.MarketingConsent,
		&r.Status, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
		&r.VehicleTitle, &r.ProvinceName,
	)
	return r, err
}

func CreateRequest(ctx context.Context, db database.DB, r *model.Request) error {
	if r.Status == "" {
		r.Status = model.RequestNew
	}
	err := db.QueryRow(ctx,
		`INSERT INTO requests (reference, type, vehicle_id, rental_option_id, province_id,
		     first_name, last_name, email, phone, message, privacy_consent, marketing_consent, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		r.Reference, r.Type, r.VehicleID, r.RentalOptionID, r.ProvinceID,
		r.FirstName, r.LastName, r.Email, r.Phone, r.Message, r.PrivacyConsent, r.MarketingConsent, r.Status,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	return wrap("CreateRequest", err)
}

// ListRequests 依建立時間新到舊列出需求，並回傳總筆數
func ListRequests(ctx context.Context, db database.DB, f RequestFilter) ([]model.Request, int, error) {
	f.Page = f.Page.Normalize()
	q := Select(requestColumns, requestFrom).
		WhereIf(f.Status != "", "r.status = ?", f.Status).
		WhereIf(f.Type != "", "r.type = ?", f.Type)
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where("r.first_name ILIKE ? OR r.last_name ILIKE ? OR r.email ILIKE ? OR r.reference ILIKE ?", p, p, p, p)
	}

	var total int
	countSQL, countArgs := q.BuildCount()
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrap("ListRequests", err)
	}

	sql, args := q.OrderBy("r.created_at DESC").OrderBy("r.id DESC").
		Limit(f.PerPage).Offset(f.Offset()).
		Build()
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, wrap("ListRequests", err)
	}
	defer rows.Close()

	requests := []model.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, wrap("ListRequests", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("ListRequests", err)
	}
	return requests, total, nil
}

func GetRequest(ctx context.Context, db database.DB, id int) (*model.Request, error) {
	sql, args := Select(requestColumns, requestFrom).Where("r.id = ?", id).Build()
	r, err := scanRequest(db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, wrap("GetRequest", err)
	}
	return r, nil
}

// UpdateRequestStatus 更新處理狀態；notes 為 nil 時保留原備註
func UpdateRequestStatus(ctx context.Context, db database.DB, id int, status string, notes *string) error {
	tag, err := db.Exec(ctx,
		`UPDATE requests SET status = $1, notes = COALESCE($2, notes), updated_at = now() WHERE id = $3`,
		status,
		notes,
		id,
	)
	if err != nil {
		return wrap("UpdateRequestStatus", err)
	}
	return mustAffect("UpdateRequestStatus", tag)
}

func DeleteRequest(ctx context.Context, db database.DB, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return wrap("DeleteRequest", err)
	}
	return mustAffect("DeleteRequest", tag)
}

// CountRequestsByStatus 回傳各狀態的需求數量，沒有資料的狀態為 0
func CountRequestsByStatus(ctx context.Context, db database.DB) (map[string]int, error) {
	rows, err := db.Query(ctx, `SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, wrap("CountRequestsByStatus", err)
	}
	defer rows.Close()

	counts := map[string]int{
		model.RequestNew:       0,
		model.RequestContacted: 0,
		model.RequestClosed:    0,
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, wrap("CountRequestsByStatus", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("CountRequestsByStatus", err)
	}
	return counts, nil
}
