package admin

import (
	"fmt"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/notify"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

type stubValidator struct{ err error }

func (s *stubValidator) Validate(i interface{}) error { return s.err }

func newCtx(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withParams 設定路徑參數，names 與 values 交錯傳入
func withParams(c echo.Context, pairs ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(pairs); i += 2 {
		names = append(names, pairs[i])
		values = append(values, pairs[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func notFound(op string) error { return fmt.Errorf("%s: %w", op, store.ErrNotFound) }

func conflict(op string) error { return fmt.Errorf("%s: %w", op, store.ErrConflict) }

func restore() {
	listVehicles = store.ListVehicles
	getVehicleByID = store.GetVehicleByID
	createVehicle = store.CreateVehicle
	updateVehicle = store.UpdateVehicle
	setVehiclePublished = store.SetVehiclePublished
	deleteVehicle = store.DeleteVehicle
	vehicleSlugExists = store.VehicleSlugExists
	getBrand = store.GetBrand
	listRentalOptions = store.ListRentalOptions

	createRentalOption = store.CreateRentalOption
	updateRentalOption = store.UpdateRentalOption
	deleteRentalOption = store.DeleteRentalOption

	listBrands = store.ListBrands
	createBrand = store.CreateBrand
	updateBrand = store.UpdateBrand
	deleteBrand = store.DeleteBrand
	listCategories = store.ListCategories
	createCategory = store.CreateCategory
	updateCategory = store.UpdateCategory
	deleteCategory = store.DeleteCategory
	listProvinces = store.ListProvinces
	createProvince = store.CreateProvince
	updateProvince = store.UpdateProvince
	deleteProvince = store.DeleteProvince
	lookupSlugExists = store.LookupSlugExists

	listRequests = store.ListRequests
	getRequest = store.GetRequest
	updateRequestStatus = store.UpdateRequestStatus
	deleteRequest = store.DeleteRequest
	countRequestsByStatus = store.CountRequestsByStatus

	listSettings = store.ListSettings
	updateSettings = store.UpdateSettings
	loadSecuritySettings = service.LoadSecuritySettings

	listIntegrations = store.ListIntegrations
	getIntegration = store.GetIntegration
	updateIntegration = store.UpdateIntegration
	testIntegration = notify.TestIntegration
}
