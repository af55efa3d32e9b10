package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/A123lny/o2o-catalogo-sub002/internal/api"
	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/handler"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
)

var (
	listRequests          = store.ListRequests
	getRequest            = store.GetRequest
	updateRequestStatus   = store.UpdateRequestStatus
	deleteRequest         = store.DeleteRequest
	countRequestsByStatus = store.CountRequestsByStatus
)

// @Summary     List customer requests
// @Description 依建立時間由新到舊排序；q 會比對姓名、email、電話與編號
// @Tags        admin-requests
// @Produce     json
// @Param       status   query    string false "new / contacted / closed"
// @Param       type     query    string false "info / test_drive / quote / rental"
// @Param       q        query    string false "關鍵字"
// @Param       page     query    int    false "頁碼"
// @Param       per_page query    int    false "每頁筆數"
// @Success     200 {object} api.RequestListResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/requests [get]
func ListRequestsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var q api.RequestListQuery
		if ok, err := handler.Decode(c, &q); !ok {
			return err
		}
		page := store.Page{Page: q.Page, PerPage: q.PerPage}
		items, total, err := listRequests(c.Request().Context(), db, store.RequestFilter{
			Status: q.Status,
			Type:   q.Type,
			Search: q.Q,
			Page:   page,
		})
		if err != nil {
			return handler.Internal(err)
		}

		page = page.Normalize()
		if items == nil {
			items = []model.Request{}
		}
		return c.JSON(http.StatusOK, api.RequestListResponse{
			Items:      items,
			Total:      total,
			Page:       page.Page,
			PerPage:    page.PerPage,
			TotalPages: api.TotalPages(total, page.PerPage),
		})
	}
}

// @Summary     Count requests by status
// @Tags        admin-requests
// @Produce     json
// @Success     200 {object} map[string]int
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/requests/stats [get]
func RequestStatsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		counts, err := countRequestsByStatus(c.Request().Context(), db)
		if err != nil {
			return handler.Internal(err)
		}
		return c.JSON(http.StatusOK, counts)
	}
}

// @Summary     Get a customer request
// @Tags        admin-requests
// @Produce     json
// @Param       id  path     int true "需求 ID"
// @Success     200 {object} model.Request
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/requests/{id} [get]
func GetRequestHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid request ID")
		}
		r, err := getRequest(c.Request().Context(), db, id)
		if err != nil {
			return handler.StoreError(c, err, "request")
		}
		return c.JSON(http.StatusOK, r)
	}
}

// @Summary     Update request status
// @Description notes 省略時保留原本的備註
// @Tags        admin-requests
// @Accept      json
// @Produce     json
// @Param       id   path     int                            true "需求 ID"
// @Param       body body     api.UpdateRequestStatusRequest true "狀態"
// @Success     200  {object} model.Request
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/requests/{id} [patch]
func UpdateRequestStatusHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid request ID")
		}
		var req api.UpdateRequestStatusRequest
		if ok, err := handler.Decode(c, &req); !ok {
			return err
		}
		ctx := c.Request().Context()
		if err := updateRequestStatus(ctx, db, id, req.Status, req.Notes); err != nil {
			return handler.StoreError(c, err, "request")
		}
		r, err := getRequest(ctx, db, id)
		if err != nil {
			return handler.StoreError(c, err, "request")
		}
		return c.JSON(http.StatusOK, r)
	}
}

// @Summary     Delete a customer request
// @Tags        admin-requests
// @Param       id  path int true "需求 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/requests/{id} [delete]
func DeleteRequestHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			return handler.BadRequest(c, "invalid request ID")
		}
		if err := deleteRequest(c.Request().Context(), db, id); err != nil {
			return handler.StoreError(c, err, "request")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
