package store

import (
	"context"
	"strings"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// VehicleFilter 目錄查詢條件；零值欄位代表不過濾
type VehicleFilter struct {
	PublishedOnly bool
	// Published 後台以上架狀態過濾；PublishedOnly 為 true 時忽略
	Published *bool

	BrandSlug    string
	CategorySlug string
	FuelType     string
	Transmission string
	ListingType  string
	ContractType string
	Status       string
	Search       string

	MinPrice   *int64
	MaxPrice   *int64
	MaxMonthly *int64
	MinYear    *int
	MaxMileage *int
	Featured   *bool

	Sort string
	Page
}

// 排序選項
const (
	SortNewest     = "newest"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortYearDesc   = "year_desc"
	SortMileageAsc = "mileage_asc"
	SortMonthlyAsc = "monthly_asc"
)

var vehicleSorts = map[string][]string{
	SortNewest:     {"v.is_featured DESC", "v.created_at DESC", "v.id DESC"},
	SortPriceAsc:   {"v.price_cents ASC NULLS LAST", "v.id"},
	SortPriceDesc:  {"v.price_cents DESC NULLS LAST", "v.id"},
	SortYearDesc:   {"v.year DESC", "v.id DESC"},
	SortMileageAsc: {"v.mileage_km ASC", "v.id"},
	SortMonthlyAsc: {"min_monthly ASC NULLS LAST", "v.id"},
}

// ValidSort 回報 sort 是否為支援的排序方式 (空字串視為預設)
func ValidSort(sort string) bool {
	if sort == "" {
		return true
	}
	_, ok := vehicleSorts[sort]
	return ok
}

const (
	vehicleColumns = `v.id, v.slug, v.brand_id, v.category_id, v.model, v.version, v.year,
		v.fuel_type, v.transmission, v.power_hp, v.mileage_km, v.doors, v.seats, v.color,
		v.price_cents, v.listing_type, v.status, v.description, v.images,
		v.is_featured, v.is_published, v.created_at, v.updated_at,
		b.name, b.slug, COALESCE(c.name, ''), COALESCE(c.slug, ''),
		(SELECT MIN(ro.monthly_price_cents) FROM rental_options ro WHERE ro.vehicle_id = v.id) AS min_monthly`

	vehicleFrom = `vehicles v
		JOIN brands b ON b.id = v.brand_id
		LEFT JOIN categories c ON c.id = v.category_id`
)

func scanVehicle(row interface{ Scan(...any) error }) (*model.Vehicle, error) {
	v := &model.Vehicle{}
	err := row.Scan(
		&v.ID, &v.Slug, &v.BrandID, &v.CategoryID, &v.Model, &v.Version, &v.Year,
		&v.FuelType, &v.Transmission, &v.PowerHP, &v.MileageKM, &v.Doors, &v.Seats, &v.Color,
		&v.PriceCents, &v.ListingType, &v.Status, &v.Description, &v.Images,
		&v.IsFeatured, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
		&v.BrandName, &v.BrandSlug, &v.CategoryName, &v.CategorySlug,
		&v.MinMonthlyCents,
	)
	if err != nil {
		return nil, err
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	return v, nil
}

// vehicleQuery 將過濾條件轉為 Query (不含排序與分頁)
func vehicleQuery(f VehicleFilter) *Query {
	q := Select(vehicleColumns, vehicleFrom).
		WhereIf(f.PublishedOnly, "v.is_published = ?", true).
		WhereIf(f.BrandSlug != "", "b.slug = ?", f.BrandSlug).
		WhereIf(f.CategorySlug != "", "c.slug = ?", f.CategorySlug).
		WhereIf(f.FuelType != "", "v.fuel_type = ?", f.FuelType).
		WhereIf(f.Transmission != "", "v.transmission = ?", f.Transmission).
		WhereIf(f.Status != "", "v.status = ?", f.Status)

	if f.Published != nil && !f.PublishedOnly {
		q = q.Where("v.is_published = ?", *f.Published)
	}
	if f.ListingType != "" {
		// 「both」同時屬於買賣與租賃
		q = q.Where("v.listing_type IN (?, ?)", f.ListingType, model.ListingBoth)
	}
	if f.MinPrice != nil {
		q = q.Where("v.price_cents >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("v.price_cents <= ?", *f.MaxPrice)
	}
	if f.MinYear != nil {
		q = q.Where("v.year >= ?", *f.MinYear)
	}
	if f.MaxMileage != nil {
		q = q.Where("v.mileage_km <= ?", *f.MaxMileage)
	}
	if f.Featured != nil {
		q = q.Where("v.is_featured = ?", *f.Featured)
	}

	if f.ContractType != "" || f.MaxMonthly != nil {
		conds := []string{"ro.vehicle_id = v.id"}
		var args []any
		if f.ContractType != "" {
			conds = append(conds, "ro.contract_type = ?")
			args = append(args, f.ContractType)
		}
		if f.MaxMonthly != nil {
			conds = append(conds, "ro.monthly_price_cents <= ?")
			args = append(args, *f.MaxMonthly)
		}
		q = q.Where("EXISTS (SELECT 1 FROM rental_options ro WHERE "+strings.Join(conds, " AND ")+")", args...)
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where("v.model ILIKE ? OR v.version ILIKE ? OR b.name ILIKE ?", p, p, p)
	}
	return q
}

// ListVehicles 回傳符合條件的車輛與總筆數
func ListVehicles(ctx context.Context, db database.DB, f VehicleFilter) ([]model.Vehicle, int, error) {
	f.Page = f.Page.Normalize()
	q := vehicleQuery(f)

	var total int
	countSQL, countArgs := q.BuildCount()
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrap("ListVehicles", err)
	}

	order, ok := vehicleSorts[f.Sort]
	if !ok {
		order = vehicleSorts[SortNewest]
	}
	for _, o := range order {
		q = q.OrderBy(o)
	}
	sql, args := q.Limit(f.PerPage).Offset(f.Offset()).Build()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, wrap("ListVehicles", err)
	}
	defer rows.Close()

	vehicles := []model.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, wrap("ListVehicles", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("ListVehicles", err)
	}
	return vehicles, total, nil
}

func GetVehicleByID(ctx context.Context, db database.DB, id int) (*model.Vehicle, error) {
	sql, args := Select(vehicleColumns, vehicleFrom).Where("v.id = ?", id).Build()
	v, err := scanVehicle(db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, wrap("GetVehicleByID", err)
	}
	return v, nil
}

// GetVehicleBySlug 取得車輛；publishedOnly 時未上架視為不存在
func GetVehicleBySlug(ctx context.Context, db database.DB, slug string, publishedOnly bool) (*model.Vehicle, error) {
	sql, args := Select(vehicleColumns, vehicleFrom).
		Where("v.slug = ?", slug).
		WhereIf(publishedOnly, "v.is_published = ?", true).
		Build()
	v, err := scanVehicle(db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, wrap("GetVehicleBySlug", err)
	}
	return v, nil
}

func CreateVehicle(ctx context.Context, db database.DB, v *model.Vehicle) error {
	if v.Images == nil {
		v.Images = []string{}
	}
	err := db.QueryRow(ctx,
		`INSERT INTO vehicles (slug, brand_id, category_id, model, version, year, fuel_type, transmission,
		     power_hp, mileage_km, doors, seats, color, price_cents, listing_type, status, description,
		     images, is_featured, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		 RETURNING id, created_at, updated_at`,
		v.Slug, v.BrandID, v.CategoryID, v.Model, v.Version, v.Year, v.FuelType, v.Transmission,
		v.PowerHP, v.MileageKM, v.Doors, v.Seats, v.Color, v.PriceCents, v.ListingType, v.Status, v.Description,
		v.Images, v.IsFeatured, v.IsPublished,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return wrap("CreateVehicle", err)
}

func UpdateVehicle(ctx context.Context, db database.DB, v *model.Vehicle) error {
	if v.Images == nil {
		v.Images = []string{}
	}
	err := db.QueryRow(ctx,
		`UPDATE vehicles SET slug = $1, brand_id = $2, category_id = $3, model = $4, version = $5, year = $6,
		     fuel_type = $7, transmission = $8, power_hp = $9, mileage_km = $10, doors = $11, seats = $12,
		     color = $13, price_cents = $14, listing_type = $15, status = $16, description = $17,
		     images = $18, is_featured = $19, is_published = $20, updated_at = now()
		 WHERE id = $21
		 RETURNING created_at, updated_at`,
		v.Slug, v.BrandID, v.CategoryID, v.Model, v.Version, v.Year,
		v.FuelType, v.Transmission, v.PowerHP, v.MileageKM, v.Doors, v.Seats,
		v.Color, v.PriceCents, v.ListingType, v.Status, v.Description,
		v.Images, v.IsFeatured, v.IsPublished, v.ID,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	return wrap("UpdateVehicle", err)
}

func SetVehiclePublished(ctx context.Context, db database.DB, id int, published bool) error {
	tag, err := db.Exec(ctx,
		`UPDATE vehicles SET is_published = $1, updated_at = now() WHERE id = $2`,
		published,
		id,
	)
	if err != nil {
		return wrap("SetVehiclePublished", err)
	}
	return mustAffect("SetVehiclePublished", tag)
}

func DeleteVehicle(ctx context.Context, db database.DB, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return wrap("DeleteVehicle", err)
	}
	return mustAffect("DeleteVehicle", tag)
}

// VehicleSlugExists 檢查 slug 是否已被其他車輛使用
func VehicleSlugExists(ctx context.Context, db database.DB, slug string, excludeID int) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vehicles WHERE slug = $1 AND id <> $2)`,
		slug,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, wrap("VehicleSlugExists", err)
	}
	return exists, nil
}
