package admin

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

// delCache 記錄被刪除的快取鍵
func delCache() (*cache.FakeCache, *[]string) {
	var deleted []string
	return &cache.FakeCache{
		DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
			deleted = append(deleted, keys...)
			return redis.NewIntResult(int64(len(keys)), nil)
		},
	}, &deleted
}

func TestListLookupsIncludeInactive(t *testing.T) {
	t.Cleanup(restore)
	e := echo.New()
	listBrands = func(_ context.Context, _ database.DB, activeOnly bool) ([]model.Brand, error) {
		require.False(t, activeOnly)
		return []model.Brand{{ID: 1, Name: "Lancia", IsActive: false}}, nil
	}
	listCategories = func(_ context.Context, _ database.DB, activeOnly bool) ([]model.Category, error) {
		require.False(t, activeOnly)
		return []model.Category{}, nil
	}
	listProvinces = func(_ context.Context, _ database.DB, region string) ([]model.Province, error) {
		require.Empty(t, region)
		return []model.Province{{ID: 1, Code: "MI"}}, nil
	}

	ctx, rec := newCtx(e, http.MethodGet, "/", "")
	require.NoError(t, ListBrandsHandler(nil)(ctx))
	require.Contains(t, rec.Body.String(), `"is_active":false`)

	ctx, rec = newCtx(e, http.MethodGet, "/", "")
	require.NoError(t, ListCategoriesHandler(nil)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, rec = newCtx(e, http.MethodGet, "/", "")
	require.NoError(t, ListProvincesHandler(nil)(ctx))
	require.Contains(t, rec.Body.String(), `"code":"MI"`)
}

func TestSaveBrandHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}

	t.Run("create with generated slug", func(t *testing.T) {
		t.Cleanup(restore)
		cch, deleted := delCache()
		lookupSlugExists = func(_ context.Context, _ database.DB, resource, slug string, excludeID int) (bool, error) {
			require.Equal(t, store.ResourceBrand, resource)
			require.Zero(t, excludeID)
			return slug == "citroen", nil
		}
		var got model.Brand
		createBrand = func(_ context.Context, _ database.DB, b *model.Brand) error {
			b.ID = 3
			got = *b
			return nil
		}
		ctx, rec := newCtx(e, http.MethodPost, "/admin/brands", `{"name":" Citroën "}`)
		require.NoError(t, SaveBrandHandler(nil, cch)(ctx))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "Citroën", got.Name)
		require.Equal(t, "citroen-2", got.Slug)
		require.True(t, got.IsActive)
		require.Equal(t, []string{handler.CacheKeyBrands}, *deleted)
	})

	t.Run("update inactive", func(t *testing.T) {
		t.Cleanup(restore)
		cch, _ := delCache()
		lookupSlugExists = func(_ context.Context, _ database.DB, _, _ string, excludeID int) (bool, error) {
			require.Equal(t, 3, excludeID)
			return false, nil
		}
		var got model.Brand
		updateBrand = func(_ context.Context, _ database.DB, b *model.Brand) error {
			got = *b
			return nil
		}
		ctx, rec := newCtx(e, http.MethodPut, "/", `{"name":"Lancia","slug":"lancia","is_active":false}`)
		require.NoError(t, SaveBrandHandler(nil, cch)(withParams(ctx, "id", "3")))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 3, got.ID)
		require.False(t, got.IsActive)
	})

	t.Run("update missing", func(t *testing.T) {
		t.Cleanup(restore)
		lookupSlugExists = func(context.Context, database.DB, string, string, int) (bool, error) { return false, nil }
		updateBrand = func(context.Context, database.DB, *model.Brand) error { return notFound("UpdateBrand") }
		ctx, rec := newCtx(e, http.MethodPut, "/", `{"name":"Lancia"}`)
		require.NoError(t, SaveBrandHandler(nil, nil)(withParams(ctx, "id", "3")))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		ctx, rec := newCtx(e, http.MethodPut, "/", `{"name":"Lancia"}`)
		require.NoError(t, SaveBrandHandler(nil, nil)(withParams(ctx, "id", "x")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSaveCategoryHandler(t *testing.T) {
	t.Cleanup(restore)
	e := echo.New()
	e.Validator = &stubValidator{}
	cch, deleted := delCache()
	lookupSlugExists = func(_ context.Context, _ database.DB, resource, _ string, _ int) (bool, error) {
		require.Equal(t, store.ResourceCategory, resource)
		return false, nil
	}
	createCategory = func(_ context.Context, _ database.DB, c *model.Category) error {
		require.Equal(t, "city-car", c.Slug)
		c.ID = 1
		return nil
	}
	ctx, rec := newCtx(e, http.MethodPost, "/", `{"name":"City Car"}`)
	require.NoError(t, SaveCategoryHandler(nil, cch)(ctx))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, []string{handler.CacheKeyCategories}, *deleted)
}

func TestSaveProvinceHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}

	t.Run("code uppercased", func(t *testing.T) {
		t.Cleanup(restore)
		cch, deleted := delCache()
		createProvince = func(_ context.Context, _ database.DB, p *model.Province) error {
			require.Equal(t, "MI", p.Code)
			p.ID = 1
			return nil
		}
		ctx, rec := newCtx(e, http.MethodPost, "/", `{"name":"Milano","code":"mi","region":"Lombardia"}`)
		require.NoError(t, SaveProvinceHandler(nil, cch)(ctx))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, []string{handler.CacheKeyProvinces}, *deleted)
	})

	t.Run("duplicate code", func(t *testing.T) {
		t.Cleanup(restore)
		createProvince = func(context.Context, database.DB, *model.Province) error {
			return conflict("CreateProvince")
		}
		ctx, rec := newCtx(e, http.MethodPost, "/", `{"name":"Milano","code":"MI"}`)
		require.NoError(t, SaveProvinceHandler(nil, nil)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDeleteLookupHandlers(t *testing.T) {
	e := echo.New()

	t.Run("brand in use", func(t *testing.T) {
		t.Cleanup(restore)
		cch, deleted := delCache()
		deleteBrand = func(context.Context, database.DB, int) error { return conflict("DeleteBrand") }
		ctx, rec := newCtx(e, http.MethodDelete, "/", "")
		require.NoError(t, DeleteBrandHandler(nil, cch)(withParams(ctx, "id", "1")))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Empty(t, *deleted)
	})

	t.Run("category", func(t *testing.T) {
		t.Cleanup(restore)
		cch, deleted := delCache()
		deleteCategory = func(context.Context, database.DB, int) error { return nil }
		ctx, rec := newCtx(e, http.MethodDelete, "/", "")
		require.NoError(t, DeleteCategoryHandler(nil, cch)(withParams(ctx, "id", "2")))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, []string{handler.CacheKeyCategories}, *deleted)
	})

	t.Run("province missing", func(t *testing.T) {
		t.Cleanup(restore)
		deleteProvince = func(context.Context, database.DB, int) error { return notFound("DeleteProvince") }
		ctx, rec := newCtx(e, http.MethodDelete, "/", "")
		require.NoError(t, DeleteProvinceHandler(nil, nil)(withParams(ctx, "id", "2")))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "province not found")
	})
}
