package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/api/middleware"
	"github.com/mechshop/service-api/internal/core/ports"
)

// principalID returns the id injected by the Guard middleware. Its absence
// means the route was registered without a guard.
func principalID(c echo.Context) (int64, error) {
	id, ok := c.Get(middleware.PrincipalIDKey).(int64)
	if !ok || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return id, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// pageParams reads ?page and ?per_page. Missing or unparsable values fall back
// to the service defaults.
func pageParams(c echo.Context) ports.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	return ports.Page{Page: page, PerPage: perPage}
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
