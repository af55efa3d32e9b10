package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
)

func stubCurrentUser(u model.User) {
	getUserByID = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
		cp := u
		cp.ID = id
		return &cp, nil
	}
	loadSecuritySettings = func(context.Context, database.DB) (service.SecuritySettings, error) {
		return service.DefaultSecuritySettings(), nil
	}
}

func stubTwoFactor(tf *model.TwoFactor) {
	getTwoFactor = func(context.Context, database.DB, int) (*model.TwoFactor, error) {
		if tf == nil {
			return nil, notFound("GetTwoFactor")
		}
		cp := *tf
		return &cp, nil
	}
}

func TestCurrentUser(t *testing.T) {
	t.Cleanup(restore)
	e := echo.New()

	ctx, _ := newJSONCtx(e, "")
	_, err := currentUser(ctx, nil)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)

	getUserByID = func(context.Context, database.DB, int) (*model.User, error) { return nil, notFound("GetUserByID") }
	ctx, _ = newAuthedCtx(e, 3, "")
	_, err = currentUser(ctx, nil)
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestTwoFactorStatusHandler(t *testing.T) {
	e := echo.New()

	t.Run("not configured", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{IsAdmin: true})
		stubTwoFactor(nil)
		ctx, rec := newAuthedCtx(e, 1, "")
		require.NoError(t, TwoFactorStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"enabled":false,"pending":false,"required":false,"backup_codes_remaining":0}`, rec.Body.String())
	})

	t.Run("enabled and required", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{IsAdmin: true})
		loadSecuritySettings = func(context.Context, database.DB) (service.SecuritySettings, error) {
			s := service.DefaultSecuritySettings()
			s.Require2FAAdmin = true
			return s, nil
		}
		stubTwoFactor(&model.TwoFactor{Enabled: true, BackupCodes: []string{"a", "b", "c"}})
		ctx, rec := newAuthedCtx(e, 1, "")
		require.NoError(t, TwoFactorStatusHandler(nil)(ctx))
		require.JSONEq(t, `{"enabled":true,"pending":false,"required":true,"backup_codes_remaining":3}`, rec.Body.String())
	})

	t.Run("pending", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{})
		stubTwoFactor(&model.TwoFactor{Secret: "S"})
		ctx, rec := newAuthedCtx(e, 1, "")
		require.NoError(t, TwoFactorStatusHandler(nil)(ctx))
		require.Contains(t, rec.Body.String(), `"pending":true`)
	})
}

func TestTwoFactorSetupHandler(t *testing.T) {
	e := echo.New()

	t.Run("already enabled", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{Email: "a@b.it"})
		stubTwoFactor(&model.TwoFactor{Enabled: true})
		ctx, rec := newAuthedCtx(e, 1, "")
		require.NoError(t, TwoFactorSetupHandler(nil, "Catalogo")(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{Email: "a@b.it"})
		stubTwoFactor(&model.TwoFactor{Secret: "OLD"})
		generateTOTPSecret = func(issuer, account string) (*service.TOTPSetup, error) {
			require.Equal(t, "Catalogo", issuer)
			require.Equal(t, "a@b.it", account)
			return &service.TOTPSetup{Secret: "NEW", OTPAuthURL: "otpauth://x", QRCode: "data:image/png;base64,AA"}, nil
		}
		var stored string
		upsertTwoFactorSecret = func(_ context.Context, _ database.DB, id int, secret string) error {
			require.Equal(t, 5, id)
			stored = secret
			return nil
		}
		ctx, rec := newAuthedCtx(e, 5, "")
		require.NoError(t, TwoFactorSetupHandler(nil, "Catalogo")(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "NEW", stored)
		require.Contains(t, rec.Body.String(), `"otpauth_url":"otpauth://x"`)
	})
}

func TestTwoFactorVerifyHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}
	const body = `{"code":"123456"}`

	t.Run("setup not started", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{})
		stubTwoFactor(nil)
		ctx, rec := newAuthedCtx(e, 1, body)
		require.NoError(t, TwoFactorVerifyHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("wrong code", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{})
		stubTwoFactor(&model.TwoFactor{Secret: "S"})
		verifyTOTP = func(string, string) bool { return false }
		ctx, rec := newAuthedCtx(e, 1, body)
		require.NoError(t, TwoFactorVerifyHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("enables and returns backup codes", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{})
		stubTwoFactor(&model.TwoFactor{Secret: "S"})
		verifyTOTP = func(s, c string) bool { return s == "S" && c == "123456" }
		generateBackupCodes = func(n int) ([]string, []string, error) {
			require.Equal(t, service.BackupCodeCount, n)
			return []string{"aaaa-bbbb"}, []string{"hash"}, nil
		}
		var enabled []string
		enableTwoFactor = func(_ context.Context, _ database.DB, _ int, hashed []string) error {
			enabled = hashed
			return nil
		}
		ctx, rec := newAuthedCtx(e, 1, body)
		require.NoError(t, TwoFactorVerifyHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"backup_codes":["aaaa-bbbb"]}`, rec.Body.String())
		require.Equal(t, []string{"hash"}, enabled)
	})
}

func TestTwoFactorDisableHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}
	const body = `{"password":"Secret123","code":"123456"}`

	base := func(t *testing.T) *bool {
		stubCurrentUser(model.User{PasswordHash: "h"})
		stubTwoFactor(&model.TwoFactor{Secret: "S", Enabled: true})
		comparePassword = func(string, string) error { return nil }
		verifyTOTP = func(string, string) bool { return true }
		markTOTPUsed = func(context.Context, cache.Cache, int, string) (bool, error) { return true, nil }
		deleted := false
		deleteTwoFactor = func(context.Context, database.DB, int) error { deleted = true; return nil }
		return &deleted
	}

	t.Run("required for admins", func(t *testing.T) {
		t.Cleanup(restore)
		deleted := base(t)
		stubCurrentUser(model.User{IsAdmin: true})
		loadSecuritySettings = func(context.Context, database.DB) (service.SecuritySettings, error) {
			return service.SecuritySettings{Require2FAAdmin: true}, nil
		}
		ctx, rec := newAuthedCtx(e, 1, body)
		require.NoError(t, TwoFactorDisableHandler(nil, nil)(ctx))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.False(t, *deleted)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Cleanup(restore)
		deleted := base(t)
		comparePassword = func(string, string) error { return errors.New("mismatch") }
		ctx, rec := newAuthedCtx(e, 1, body)
		require.NoError(t, TwoFactorDisableHandler(nil, nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, *deleted)
	})

	t.Run("code already used", func(t *testing.T) {
		t.Cleanup(restore)
		deleted := base(t)
		markTOTPUsed = func(context.Context, cache.Cache, int, string) (bool, error) { return false, nil }
		ctx, rec := newAuthedCtx(e, 1, body)
		require.NoError(t, TwoFactorDisableHandler(nil, nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, *deleted)
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		deleted := base(t)
		ctx, rec := newAuthedCtx(e, 1, body)
		require.NoError(t, TwoFactorDisableHandler(nil, nil)(ctx))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.True(t, *deleted)
	})
}

func TestBackupCodesHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}

	t.Run("not enabled", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{})
		stubTwoFactor(&model.TwoFactor{Secret: "S"})
		ctx, rec := newAuthedCtx(e, 1, `{"code":"123456"}`)
		require.NoError(t, BackupCodesHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("regenerates", func(t *testing.T) {
		t.Cleanup(restore)
		stubCurrentUser(model.User{})
		stubTwoFactor(&model.TwoFactor{Secret: "S", Enabled: true})
		verifyTOTP = func(string, string) bool { return true }
		generateBackupCodes = func(int) ([]string, []string, error) {
			return []string{"c1", "c2"}, []string{"h1", "h2"}, nil
		}
		var replaced []string
		replaceBackupCodes = func(_ context.Context, _ database.DB, _ int, h []string) error {
			replaced = h
			return nil
		}
		ctx, rec := newAuthedCtx(e, 1, `{"code":"123456"}`)
		require.NoError(t, BackupCodesHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []string{"h1", "h2"}, replaced)
	})
}
