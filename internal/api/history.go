package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/slopeselector/internal/webserver"
)

func registerHistoryRoutes() {
	webserver.ApiGET("/history/:userId", GetHistory)
}

// GetHistory lists a user's recommendation sets, newest first
// @Summary get recommendation history
// @Tags History
// @Param userId path string true "User ID"
// @Success 200 {array} recommend.HistoryItem
// @Router /api/history/{userId} [get]
func GetHistory(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "User ID is required", nil)
	}

	items, err := GetAppContext(c).Recommender().History(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query history", err.Error())
	}
	if len(items) == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User or history not found", nil)
	}
	return ok(c, items)
}
