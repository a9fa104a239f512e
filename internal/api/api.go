package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/slopeselector/internal/app"
	"github.com/talkincode/slopeselector/internal/webserver"
)

// Init registers every route on the global web server
func Init() {
	webserver.GET("/", index)
	registerRecommendationRoutes()
	registerHistoryRoutes()
	registerStoreRoutes()
}

// GetAppContext returns the application context injected by the web server
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, detail string, err interface{}) error {
	return c.JSON(status, webserver.ErrorResponse{Code: code, Detail: detail, Error: err})
}

func index(c echo.Context) error {
	return ok(c, map[string]string{"message": "SlopeSelector AI API is running"})
}
