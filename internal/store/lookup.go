package store

import (
	"context"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// 目錄用的參照資料 (品牌、車型分類、省份)
const (
	ResourceBrand    = "brand"
	ResourceCategory = "category"
	ResourceProvince = "province"
)

// TableName 由資源名稱推得資料表名稱，例如 category → categories
func TableName(resource string) string {
	return inflection.Plural(strings.ToLower(resource))
}

func opName(verb, resource string) string {
	return verb + strings.ToUpper(resource[:1]) + resource[1:]
}

// deleteLookup 刪除參照資料；仍被車輛引用時回傳 ErrConflict
func deleteLookup(ctx context.Context, db database.DB, resource string, id int) error {
	op := opName("Delete", resource)
	tag, err := db.Exec(ctx, `DELETE FROM `+TableName(resource)+` WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return mustAffect(op, tag)
}

// LookupSlugExists 檢查 slug 是否已被其他資料使用
func LookupSlugExists(ctx context.Context, db database.DB, resource, slug string, excludeID int) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+TableName(resource)+` WHERE slug = $1 AND id <> $2)`,
		slug,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, wrap(opName("Check", resource)+"Slug", err)
	}
	return exists, nil
}

/* ---------- brands ---------- */

const brandColumns = `id, name, slug, logo_url, is_active, sort_order, created_at, updated_at`

func scanBrand(row interface{ Scan(...any) error }) (*model.Brand, error) {
	b := &model.Brand{}
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.IsActive, &b.SortOrder, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func ListBrands(ctx context.Context, db database.DB, activeOnly bool) ([]model.Brand, error) {
	sql, args := Select(brandColumns, TableName(ResourceBrand)).
		WhereIf(activeOnly, "is_active = ?", true).
		OrderBy("sort_order").
		OrderBy("name").
		Build()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap("ListBrands", err)
	}
	defer rows.Close()

	brands := []model.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, wrap("ListBrands", err)
		}
		brands = append(brands, *b)
	}
	return brands, wrap("ListBrands", rows.Err())
}

func GetBrand(ctx context.Context, db database.DB, id int) (*model.Brand, error) {
	b, err := scanBrand(db.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("GetBrand", err)
	}
	return b, nil
}

func CreateBrand(ctx context.Context, db database.DB, b *model.Brand) error {
	err := db.QueryRow(ctx,
		`INSERT INTO brands (name, slug, logo_url, is_active, sort_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		b.Name, b.Slug, b.LogoURL, b.IsActive, b.SortOrder,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return wrap("CreateBrand", err)
}

func UpdateBrand(ctx context.Context, db database.DB, b *model.Brand) error {
	err := db.QueryRow(ctx,
		`UPDATE brands SET name = $1, slug = $2, logo_url = $3, is_active = $4, sort_order = $5, updated_at = now()
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		b.Name, b.Slug, b.LogoURL, b.IsActive, b.SortOrder, b.ID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return wrap("UpdateBrand", err)
}

func DeleteBrand(ctx context.Context, db database.DB, id int) error {
	return deleteLookup(ctx, db, ResourceBrand, id)
}

/* ---------- categories ---------- */

const categoryColumns = `id, name, slug, description, is_active, sort_order, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	c := &model.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func ListCategories(ctx context.Context, db database.DB, activeOnly bool) ([]model.Category, error) {
	sql, args := Select(categoryColumns, TableName(ResourceCategory)).
		WhereIf(activeOnly, "is_active = ?", true).
		OrderBy("sort_order").
		OrderBy("name").
		Build()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap("ListCategories", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrap("ListCategories", err)
		}
		categories = append(categories, *c)
	}
	return categories, wrap("ListCategories", rows.Err())
}

func GetCategory(ctx context.Context, db database.DB, id int) (*model.Category, error) {
	c, err := scanCategory(db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("GetCategory", err)
	}
	return c, nil
}

func CreateCategory(ctx context.Context, db database.DB, c *model.Category) error {
	err := db.QueryRow(ctx,
		`INSERT INTO categories (name, slug, description, is_active, sort_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Slug, c.Description, c.IsActive, c.SortOrder,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return wrap("CreateCategory", err)
}

func UpdateCategory(ctx context.Context, db database.DB, c *model.Category) error {
	err := db.QueryRow(ctx,
		`UPDATE categories SET name = $1, slug = $2, description = $3, is_active = $4, sort_order = $5, updated_at = now()
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		c.Name, c.Slug, c.Description, c.IsActive, c.SortOrder, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return wrap("UpdateCategory", err)
}

func DeleteCategory(ctx context.Context, db database.DB, id int) error {
	return deleteLookup(ctx, db, ResourceCategory, id)
}

/* ---------- provinces ---------- */

const provinceColumns = `id, name, code, region, created_at, updated_at`

func scanProvince(row interface{ Scan(...any) error }) (*model.Province, error) {
	p := &model.Province{}
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Region, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProvinces 依名稱排序；region 非空時只回傳該大區
func ListProvinces(ctx context.Context, db database.DB, region string) ([]model.Province, error) {
	sql, args := Select(provinceColumns, TableName(ResourceProvince)).
		WhereIf(region != "", "region = ?", region).
		OrderBy("name").
		Build()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap("ListProvinces", err)
	}
	defer rows.Close()

	provinces := []model.Province{}
	for rows.Next() {
		p, err := scanProvince(rows)
		if err != nil {
			return nil, wrap("ListProvinces", err)
		}
		provinces = append(provinces, *p)
	}
	return provinces, wrap("ListProvinces", rows.Err())
}

func GetProvince(ctx context.Context, db database.DB, id int) (*model.Province, error) {
	p, err := scanProvince(db.QueryRow(ctx, `SELECT `+provinceColumns+` FROM provinces WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("GetProvince", err)
	}
	return p, nil
}

func CreateProvince(ctx context.Context, db database.DB, p *model.Province) error {
	err := db.QueryRow(ctx,
		`INSERT INTO provinces (name, code, region)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Code, p.Region,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return wrap("CreateProvince", err)
}

func UpdateProvince(ctx context.Context, db database.DB, p *model.Province) error {
	err := db.QueryRow(ctx,
		`UPDATE provinces SET name = $1, code = $2, region = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		p.Name, p.Code, p.Region, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return wrap("UpdateProvince", err)
}

func DeleteProvince(ctx context.Context, db database.DB, id int) error {
	return deleteLookup(ctx, db, ResourceProvince, id)
}
