package admin

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

func TestListSettingsHandler(t *testing.T) {
	t.Cleanup(restore)
	e := echo.New()
	listSettings = func(_ context.Context, _ database.DB, group string, publicOnly bool) ([]model.Setting, error) {
		require.Equal(t, model.SettingsGeneral, group)
		require.False(t, publicOnly)
		return nil, nil
	}
	ctx, rec := newCtx(e, http.MethodGet, "/admin/settings?group=general", "")
	require.NoError(t, ListSettingsHandler(nil)(ctx))
	require.Equal(t, "[]\n", rec.Body.String())
}

func TestUpdateSettingsHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}
	body := `{"group":"general","values":{"site_name":"AutoItalia"}}`

	t.Run("invalidates public settings", func(t *testing.T) {
		t.Cleanup(restore)
		cch, deleted := delCache()
		updateSettings = func(_ context.Context, _ database.DB, group string, values map[string]string) error {
			require.Equal(t, model.SettingsGeneral, group)
			require.Equal(t, "AutoItalia", values[service.KeySiteName])
			return nil
		}
		ctx, rec := newCtx(e, http.MethodPut, "/", body)
		require.NoError(t, UpdateSettingsHandler(nil, cch)(ctx))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, []string{handler.CacheKeyPublicSettings}, *deleted)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Cleanup(restore)
		cch, deleted := delCache()
		updateSettings = func(context.Context, database.DB, string, map[string]string) error {
			return fmt.Errorf("UpdateSettings: nope: %w", store.ErrNotFound)
		}
		ctx, rec := newCtx(e, http.MethodPut, "/", body)
		require.NoError(t, UpdateSettingsHandler(nil, cch)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, *deleted)
	})
}

func TestSecuritySettingsHandlers(t *testing.T) {
	t.Cleanup(restore)
	e := echo.New()
	e.Validator = &stubValidator{}
	loadSecuritySettings = func(context.Context, database.DB) (service.SecuritySettings, error) {
		return service.DefaultSecuritySettings(), nil
	}
	ctx, rec := newCtx(e, http.MethodGet, "/", "")
	require.NoError(t, GetSecuritySettingsHandler(nil)(ctx))
	require.Contains(t, rec.Body.String(), `"session_ttl_hours":24`)

	var got map[string]string
	updateSettings = func(_ context.Context, _ database.DB, group string, values map[string]string) error {
		require.Equal(t, model.SettingsSecurity, group)
		got = values
		return nil
	}
	body := `{"require_2fa_admin":true,"session_ttl_hours":8,"password_min_length":12,"max_login_attempts":3,"lockout_minutes":30}`
	ctx, rec = newCtx(e, http.MethodPut, "/", body)
	require.NoError(t, UpdateSecuritySettingsHandler(nil)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", got[service.KeyRequire2FAAdmin])
	require.Equal(t, "12", got[service.KeyPasswordMinLength])
	require.Len(t, got, 5)
}
