package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	listBrands       = store.ListBrands
	createBrand      = store.CreateBrand
	updateBrand      = store.UpdateBrand
	deleteBrand      = store.DeleteBrand
	listCategories   = store.ListCategories
	createCategory   = store.CreateCategory
	updateCategory   = store.UpdateCategory
	deleteCategory   = store.DeleteCategory
	listProvinces    = store.ListProvinces
	createProvince   = store.CreateProvince
	updateProvince   = store.UpdateProvince
	deleteProvince   = store.DeleteProvince
	lookupSlugExists = store.LookupSlugExists
)

func lookupSlug(ctx context.Context, db database.DB, resource, slug, name string, excludeID int) (string, error) {
	base := service.Slugify(slug)
	if base == "" {
		base = service.Slugify(name)
	}
	return service.UniqueSlug(ctx, base, func(ctx context.Context, s string) (bool, error) {
		return lookupSlugExists(ctx, db, resource, s, excludeID)
	})
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// lookupID 更新 / 刪除路由的 id；建立時回傳 0
func lookupID(c echo.Context) (int, bool) {
	if c.Param("id") == "" {
		return 0, true
	}
	id, err := handler.ParamID(c, "id")
	return id, err == nil
}

/* ---------- brands ---------- */

// @Summary     List all brands
// @Description 包含停用的品牌
// @Tags        admin-lookups
// @Produce     json
// @Success     200 {array}  model.Brand
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/brands [get]
func ListBrandsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		brands, err := listBrands(c.Request().Context(), db, false)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, brands)
	}
}

// SaveBrandHandler 建立 (POST /admin/brands) 或更新 (PUT /admin/brands/{id}) 品牌
//
// @Summary     Create or update a brand
// @Tags        admin-lookups
// @Accept      json
// @Produce     json
// @Param       id   path     int              false "品牌 ID (更新時)"
// @Param       body body     api.BrandRequest true  "品牌資料"
// @Success     200  {object} model.Brand
// @Success     201  {object} model.Brand
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/brands [post]
// @Router      /admin/brands/{id} [put]
func SaveBrandHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := lookupID(c)
		if !ok {
			return handler.BadRequest(c, "invalid brand ID")
		}
		var req api.BrandRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		b := &model.Brand{
			ID:        id,
			Name:      strings.TrimSpace(req.Name),
			LogoURL:   req.LogoURL,
			IsActive:  boolOr(req.IsActive, true),
			SortOrder: req.SortOrder,
		}
		var err error
		if b.Slug, err = lookupSlug(ctx, db, store.ResourceBrand, req.Slug, b.Name, id); err != nil {
			return handler.Internal(err)
		}

		status := http.StatusOK
		if id == 0 {
			err = createBrand(ctx, db, b)
			status = http.StatusCreated
		} else {
			err = updateBrand(ctx, db, b)
		}
		if err != nil {
			return handler.StoreError(c, err, "brand")
		}
		handler.InvalidateCache(ctx, cch, handler.CacheKeyBrands)
		return c.JSON(status, b)
	}
}

// @Summary     Delete a brand
// @Description 仍有車輛使用時回傳 409
// @Tags        admin-lookups
// @Param       id  path int true "品牌 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     409 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/brands/{id} [delete]
func DeleteBrandHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return deleteLookupHandler("brand", deleteBrand, db, cch, handler.CacheKeyBrands)
}

/* ---------- categories ---------- */

// @Summary     List all categories
// @Tags        admin-lookups
// @Produce     json
// @Success     200 {array}  model.Category
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/categories [get]
func ListCategoriesHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		categories, err := listCategories(c.Request().Context(), db, false)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, categories)
	}
}

// @Summary     Create or update a category
// @Tags        admin-lookups
// @Accept      json
// @Produce     json
// @Param       id   path     int                 false "分類 ID (更新時)"
// @Param       body body     api.CategoryRequest true  "分類資料"
// @Success     200  {object} model.Category
// @Success     201  {object} model.Category
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/categories [post]
// @Router      /admin/categories/{id} [put]
func SaveCategoryHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := lookupID(c)
		if !ok {
			return handler.BadRequest(c, "invalid category ID")
		}
		var req api.CategoryRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		cat := &model.Category{
			ID:          id,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			IsActive:    boolOr(req.IsActive, true),
			SortOrder:   req.SortOrder,
		}
		var err error
		if cat.Slug, err = lookupSlug(ctx, db, store.ResourceCategory, req.Slug, cat.Name, id); err != nil {
			return handler.Internal(err)
		}

		status := http.StatusOK
		if id == 0 {
			err = createCategory(ctx, db, cat)
			status = http.StatusCreated
		} else {
			err = updateCategory(ctx, db, cat)
		}
		if err != nil {
			return handler.StoreError(c, err, "category")
		}
		handler.InvalidateCache(ctx, cch, handler.CacheKeyCategories)
		return c.JSON(status, cat)
	}
}

// @Summary     Delete a category
// @Description 使用中的分類會從車輛上移除
// @Tags        admin-lookups
// @Param       id  path int true "分類 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/categories/{id} [delete]
func DeleteCategoryHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return deleteLookupHandler("category", deleteCategory, db, cch, handler.CacheKeyCategories)
}

/* ---------- provinces ---------- */

// @Summary     List all provinces
// @Tags        admin-lookups
// @Produce     json
// @Success     200 {array}  model.Province
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/provinces [get]
func ListProvincesHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		provinces, err := listProvinces(c.Request().Context(), db, "")
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, provinces)
	}
}

// @Summary     Create or update a province
// @Description code 重複時回傳 409
// @Tags        admin-lookups
// @Accept      json
// @Produce     json
// @Param       id   path     int                 false "省份 ID (更新時)"
// @Param       body body     api.ProvinceRequest true  "省份資料"
// @Success     200  {object} model.Province
// @Success     201  {object} model.Province
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/provinces [post]
// @Router      /admin/provinces/{id} [put]
func SaveProvinceHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := lookupID(c)
		if !ok {
			return handler.BadRequest(c, "invalid province ID")
		}
		var req api.ProvinceRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()

		p := &model.Province{
			ID:     id,
			Name:   strings.TrimSpace(req.Name),
			Code:   strings.ToUpper(req.Code),
			Region: strings.TrimSpace(req.Region),
		}
		var err error
		status := http.StatusOK
		if id == 0 {
			err = createProvince(ctx, db, p)
			status = http.StatusCreated
		} else {
			err = updateProvince(ctx, db, p)
		}
		if err != nil {
			return handler.StoreError(c, err, "province")
		}
		handler.InvalidateCache(ctx, cch, handler.CacheKeyProvinces)
		return c.JSON(status, p)
	}
}

// @Summary     Delete a province
// @Tags        admin-lookups
// @Param       id  path int true "省份 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/provinces/{id} [delete]
func DeleteProvinceHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return deleteLookupHandler("province", deleteProvince, db, cch, handler.CacheKeyProvinces)
}

func deleteLookupHandler(
	what string,
	del func(context.Context, database.DB, int) error,
	db database.DB,
	cch cache.Cache,
	cacheKey string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid "+what+" ID")
		}
		ctx := c.Request().Context()
		if err := del(ctx, db, id); err != nil {
			return handler.StoreError(c, err, what)
		}
		handler.InvalidateCache(ctx, cch, cacheKey)
		return c.NoContent(http.StatusNoContent)
	}
}
