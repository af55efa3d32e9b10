package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/middleware"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

type stubValidator struct{ err error }

func (s *stubValidator) Validate(i interface{}) error { return s.err }

func newJSONCtx(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newParamCtx(e *echo.Echo, method, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONCtx(e, method, body)
	c.SetPath("/admin/users/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set(middleware.ContextUserKey, &service.CustomClaims{UserID: 1, IsAdmin: true})
	return c, rec
}

func notFound() error { return fmt.Errorf("GetUserByID: %w", store.ErrNotFound) }

func restore() {
	hashPassword = service.HashPassword
	comparePassword = service.ComparePassword
	generatePassword = service.GeneratePassword
	validatePassword = service.ValidatePasswordPolicy
	loadSecuritySettings = service.LoadSecuritySettings

	listUsers = store.ListUsers
	createUser = store.CreateUser
	getUserByID = store.GetUserByID
	updateUser = store.UpdateUser
	updateProfile = store.UpdateProfile
	updateUserPassword = store.UpdateUserPassword
	deleteUser = store.DeleteUser
	getTwoFactor = store.GetTwoFactor
	deleteTwoFactor = store.DeleteTwoFactor
}

func stubCommon() {
	loadSecuritySettings = func(context.Context, database.DB) (service.SecuritySettings, error) {
		return service.DefaultSecuritySettings(), nil
	}
	getTwoFactor = func(context.Context, database.DB, int) (*model.TwoFactor, error) {
		return nil, fmt.Errorf("GetTwoFactor: %w", store.ErrNotFound)
	}
	hashPassword = func(p string) (string, error) { return "hash:" + p, nil }
}

func stubUser(u model.User) {
	getUserByID = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
		cp := u
		cp.ID = id
		return &cp, nil
	}
}

func TestListUsersHandler(t *testing.T) {
	t.Cleanup(restore)
	stubCommon()
	listUsers = func(context.Context, database.DB) ([]model.User, error) {
		return []model.User{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, nil
	}
	getTwoFactor = func(_ context.Context, _ database.DB, id int) (*model.TwoFactor, error) {
		if id == 2 {
			return &model.TwoFactor{Enabled: true}, nil
		}
		return nil, fmt.Errorf("GetTwoFactor: %w", store.ErrNotFound)
	}
	e := echo.New()
	ctx, rec := newJSONCtx(e, http.MethodGet, "")
	require.NoError(t, ListUsersHandler(nil)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":2,"name":"b","email":"","is_admin":false,"is_active":false,"two_factor_enabled":true`)
}

func TestCreateUserHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}

	t.Run("bind error", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newJSONCtx(e, http.MethodPost, "{")
		require.NoError(t, CreateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validate error", func(t *testing.T) {
		t.Cleanup(restore)
		e := echo.New()
		e.Validator = &stubValidator{err: errors.New("v")}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{}`)
		require.NoError(t, CreateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		t.Cleanup(restore)
		stubCommon()
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"name":"A","email":"a@b.it","password":"short"}`)
		require.NoError(t, CreateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "at least 8 characters")
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Cleanup(restore)
		stubCommon()
		createUser = func(context.Context, database.DB, *model.User) (*model.User, error) {
			return nil, fmt.Errorf("CreateUser: %w", store.ErrConflict)
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"name":"A","email":"a@b.it","password":"Secret123"}`)
		require.NoError(t, CreateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("generated password", func(t *testing.T) {
		t.Cleanup(restore)
		stubCommon()
		generatePassword = func(n int) (string, error) {
			require.Equal(t, generatedPasswordLength, n)
			return "Gen3rated", nil
		}
		now := time.Now().UTC()
		var got model.User
		createUser = func(_ context.Context, _ database.DB, u *model.User) (*model.User, error) {
			got = *u
			u.ID = 3
			u.CreatedAt = now
			return u, nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"name":" Anna ","email":"Anna@EXAMPLE.it","is_admin":true}`)
		require.NoError(t, CreateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "anna@example.it", got.Email)
		require.Equal(t, "Anna", got.Name)
		require.Equal(t, "hash:Gen3rated", got.PasswordHash)
		require.True(t, got.IsActive)
		require.True(t, got.IsAdmin)
		require.Contains(t, rec.Body.String(), `"generated_password":"Gen3rated"`)
	})

	t.Run("explicit inactive", func(t *testing.T) {
		t.Cleanup(restore)
		stubCommon()
		var got model.User
		createUser = func(_ context.Context, _ database.DB, u *model.User) (*model.User, error) {
			got = *u
			return u, nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"name":"A","email":"a@b.it","password":"Secret123","is_active":false}`)
		require.NoError(t, CreateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.False(t, got.IsActive)
		require.NotContains(t, rec.Body.String(), "generated_password")
	})
}

func TestGetUserHandler(t *testing.T) {
	e := echo.New()

	t.Run("bad id", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newParamCtx(e, http.MethodGet, "x", "")
		require.NoError(t, GetUserHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		getUserByID = func(context.Context, database.DB, int) (*model.User, error) { return nil, notFound() }
		ctx, rec := newParamCtx(e, http.MethodGet, "4", "")
		require.NoError(t, GetUserHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("db error", func(t *testing.T) {
		t.Cleanup(restore)
		getUserByID = func(context.Context, database.DB, int) (*model.User, error) { return nil, errors.New("db") }
		ctx, _ := newParamCtx(e, http.MethodGet, "4", "")
		require.Error(t, GetUserHandler(nil)(ctx))
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		stubCommon()
		stubUser(model.User{Name: "n"})
		ctx, rec := newParamCtx(e, http.MethodGet, "4", "")
		require.NoError(t, GetUserHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"id":4`)
	})
}

func lastAdmin(op string) error { return fmt.Errorf("%s: %w", op, store.ErrLastAdmin) }

func TestUpdateUserHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}

	t.Run("demoting last admin", func(t *testing.T) {
		t.Cleanup(restore)
		updateUser = func(context.Context, database.DB, *model.User) error { return lastAdmin("UpdateUser") }
		ctx, rec := newParamCtx(e, http.MethodPut, "2", `{"name":"a","email":"a@b.it","is_admin":false,"is_active":true}`)
		require.NoError(t, UpdateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "last active administrator")
	})

	t.Run("deactivating one of several admins", func(t *testing.T) {
		t.Cleanup(restore)
		var got *model.User
		updateUser = func(_ context.Context, _ database.DB, u *model.User) error { got = u; return nil }
		ctx, rec := newParamCtx(e, http.MethodPut, "2", `{"name":"a","email":"A@B.it","is_admin":true,"is_active":false}`)
		require.NoError(t, UpdateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, 2, got.ID)
		require.Equal(t, "a@b.it", got.Email)
		require.False(t, got.IsActive)
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		updateUser = func(context.Context, database.DB, *model.User) error {
			return fmt.Errorf("UpdateUser: %w", store.ErrNotFound)
		}
		ctx, rec := newParamCtx(e, http.MethodPut, "2", `{"name":"a","email":"a@b.it","is_admin":true,"is_active":true}`)
		require.NoError(t, UpdateUserHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	e := echo.New()

	t.Run("self", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newParamCtx(e, http.MethodDelete, "1", "")
		require.NoError(t, DeleteUserHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "own account")
	})

	t.Run("last admin", func(t *testing.T) {
		t.Cleanup(restore)
		deleteUser = func(context.Context, database.DB, int) error { return lastAdmin("DeleteUser") }
		ctx, rec := newParamCtx(e, http.MethodDelete, "5", "")
		require.NoError(t, DeleteUserHandler(nil)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "last active administrator")
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		deleteUser = func(context.Context, database.DB, int) error {
			return fmt.Errorf("DeleteUser: %w", store.ErrNotFound)
		}
		ctx, rec := newParamCtx(e, http.MethodDelete, "5", "")
		require.NoError(t, DeleteUserHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		deleted := 0
		deleteUser = func(_ context.Context, _ database.DB, id int) error { deleted = id; return nil }
		ctx, rec := newParamCtx(e, http.MethodDelete, "5", "")
		require.NoError(t, DeleteUserHandler(nil)(ctx))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, 5, deleted)
	})
}

func TestResetUserPasswordHandler(t *testing.T) {
	t.Cleanup(restore)
	stubCommon()
	e := echo.New()
	generatePassword = func(int) (string, error) { return "N3wPassword", nil }
	var saved string
	updateUserPassword = func(_ context.Context, _ database.DB, id int, hash string) error {
		require.Equal(t, 6, id)
		saved = hash
		return nil
	}
	ctx, rec := newParamCtx(e, http.MethodPost, "6", "")
	require.NoError(t, ResetUserPasswordHandler(nil)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"password":"N3wPassword"}`, rec.Body.String())
	require.Equal(t, "hash:N3wPassword", saved)

	updateUserPassword = func(context.Context, database.DB, int, string) error {
		return fmt.Errorf("UpdateUserPassword: %w", store.ErrNotFound)
	}
	ctx, rec = newParamCtx(e, http.MethodPost, "6", "")
	require.NoError(t, ResetUserPasswordHandler(nil)(ctx))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUserTwoFactorHandler(t *testing.T) {
	t.Cleanup(restore)
	e := echo.New()
	stubUser(model.User{})
	removed := 0
	deleteTwoFactor = func(_ context.Context, _ database.DB, id int) error { removed = id; return nil }
	ctx, rec := newParamCtx(e, http.MethodDelete, "9", "")
	require.NoError(t, DeleteUserTwoFactorHandler(nil)(ctx))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 9, removed)
}
