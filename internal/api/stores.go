package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/slopeselector/internal/webserver"
)

func registerStoreRoutes() {
	webserver.ApiGET("/stores", ListStores)
}

// ListStores returns the URL rules used to name retailer links
func ListStores(c echo.Context) error {
	rules, err := GetAppContext(c).Recommender().StoreRules(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query stores", err.Error())
	}
	return ok(c, rules)
}
