package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/slopeselector/internal/gemini"
	"github.com/talkincode/slopeselector/internal/recommend"
	"github.com/talkincode/slopeselector/internal/webserver"
	"go.uber.org/zap"
)

func registerRecommendationRoutes() {
	webserver.ApiPOST("/recommendations", CreateRecommendations, webserver.RateLimit())
	webserver.ApiGET("/recommendations/:id", GetRecommendations)
	webserver.ApiDELETE("/recommendations/:id", DeleteRecommendations)
}

// CreateRecommendations asks the AI for gear and stores the answer
// @Summary create a recommendation set
// @Tags Recommendations
// @Param body body recommend.CreateRequest true "prompt and user id"
// @Success 200 {object} recommend.Recommendations
// @Router /api/recommendations [post]
func CreateRecommendations(c echo.Context) error {
	var req recommend.CreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", webserver.ValidationDetails(err))
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Prompt must not be blank", nil)
	}

	appCtx := GetAppContext(c)
	if limit := appCtx.Config().Recommend.MaxPromptLength; limit > 0 && utf8.RuneCountInString(req.Prompt) > limit {
		return fail(c, http.StatusBadRequest, "PROMPT_TOO_LONG", "Prompt is too long", map[string]int{"max": limit})
	}
	if !appCtx.AIConfigured() {
		return fail(c, http.StatusServiceUnavailable, "AI_NOT_CONFIGURED", gemini.ErrNotConfigured.Error(), nil)
	}

	rec, err := appCtx.Recommender().Create(c.Request().Context(), req.UserID, req.Prompt)
	switch {
	case err == nil:
		return ok(c, rec)
	case errors.Is(err, gemini.ErrNotConfigured):
		return fail(c, http.StatusServiceUnavailable, "AI_NOT_CONFIGURED", gemini.ErrNotConfigured.Error(), nil)
	case errors.Is(err, recommend.ErrAIFailed):
		zap.L().Error("recommendation AI call failed", zap.String("user_id", req.UserID), zap.Error(err))
		return fail(c, http.StatusBadGateway, "AI_FAILED", recommend.ErrAIFailed.Error(), err.Error())
	default:
		zap.L().Error("create recommendations failed", zap.String("user_id", req.UserID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save recommendations", err.Error())
	}
}

// GetRecommendations returns a stored set in the shape it was created with
// @Summary get a recommendation set
// @Tags Recommendations
// @Param id path string true "Recommendation set ID"
// @Success 200 {object} recommend.Recommendations
// @Router /api/recommendations/{id} [get]
func GetRecommendations(c echo.Context) error {
	id, err := parseSetID(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Recommendation set not found", nil)
	}

	rec, err := GetAppContext(c).Recommender().Get(c.Request().Context(), id)
	if errors.Is(err, recommend.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Recommendation set not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query recommendations", err.Error())
	}
	return ok(c, rec)
}

// DeleteRecommendations removes a set with all its categories and products
func DeleteRecommendations(c echo.Context) error {
	id, err := parseSetID(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Recommendation set not found", nil)
	}

	err = GetAppContext(c).Recommender().Delete(c.Request().Context(), id)
	if errors.Is(err, recommend.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Recommendation set not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete recommendations", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

// parseSetID normalizes the id, anything that is not a UUID cannot exist
func parseSetID(c echo.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
