package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/slopeselector/config"
	"github.com/talkincode/slopeselector/internal/app"
	"github.com/talkincode/slopeselector/internal/database"
	"github.com/talkincode/slopeselector/internal/domain"
	"github.com/talkincode/slopeselector/internal/gemini"
	"github.com/talkincode/slopeselector/internal/recommend"
	"github.com/talkincode/slopeselector/internal/webserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const aiDoc = `{"categories":[{"categoryTitle":"Snowboards","products":[{
	"name":"Burton Custom","brand":"Burton","description":"All mountain camber",
	"priceRange":"$600-700","pros":["Poppy","Durable"],"cons":["Stiff for beginners"],
	"highlight":"Best Overall","storeLink":["https://www.rei.com/burton","https://www.evo.com/burton"]}]}]}`

type fakeGenerator struct {
	doc   string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, req gemini.Request, out interface{}) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.doc), out)
}

type testEnv struct {
	ai *fakeGenerator
	e  *echo.Echo
}

func setup(t *testing.T, mutate func(cfg *config.AppConfig)) *testEnv {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Gemini.ApiKey = "test-key"
	cfg.Web.RateLimit = 0
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.Open(config.DBConfig{
		Type: "sqlite",
		Name: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, cfg.System.Workdir)
	require.NoError(t, err)

	ai := &fakeGenerator{doc: aiDoc}
	appCtx := app.NewApplication(cfg)
	appCtx.OverrideDB(db)
	appCtx.InitDb()
	appCtx.OverrideRecommender(recommend.NewService(recommend.NewGormRepository(db), ai))

	webserver.Init(appCtx)
	Init()
	t.Cleanup(func() {
		_ = webserver.Shutdown(time.Second)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testEnv{ai: ai, e: webserver.Root()}
}

func (env *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestIndex(t *testing.T) {
	env := setup(t, nil)
	rec := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"SlopeSelector AI API is running"}`, rec.Body.String())
}

func TestCreateThenGet(t *testing.T) {
	env := setup(t, nil)

	rec := env.do(http.MethodPost, "/api/recommendations", `{"prompt":"park and pipe","userId":"rider-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[recommend.Recommendations](t, rec)

	require.NotEmpty(t, created.ID)
	assert.Equal(t, "park and pipe", created.PromptText)
	assert.NotEmpty(t, created.CreatedAt)
	require.Len(t, created.Categories, 1)
	assert.Equal(t, []string{"Poppy", "Durable"}, created.Categories[0].Products[0].Pros)

	got := env.do(http.MethodGet, "/api/recommendations/"+created.ID, "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.JSONEq(t, rec.Body.String(), got.Body.String())
}

func TestCreateValidation(t *testing.T) {
	env := setup(t, func(cfg *config.AppConfig) { cfg.Recommend.MaxPromptLength = 10 })

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"prompt":`, "INVALID_REQUEST"},
		{"missing user", `{"prompt":"skis"}`, "INVALID_REQUEST"},
		{"missing prompt", `{"userId":"u1"}`, "INVALID_REQUEST"},
		{"blank prompt", `{"prompt":"   ","userId":"u1"}`, "INVALID_REQUEST"},
		{"too long", `{"prompt":"a very long prompt","userId":"u1"}`, "PROMPT_TOO_LONG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/recommendations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode[webserver.ErrorResponse](t, rec).Code)
		})
	}
	assert.Zero(t, env.ai.calls)
}

func TestCreateAIFailure(t *testing.T) {
	env := setup(t, nil)
	env.ai.err = gemini.ErrRetriesExhausted

	rec := env.do(http.MethodPost, "/api/recommendations", `{"prompt":"skis","userId":"u1"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[webserver.ErrorResponse](t, rec)
	assert.Equal(t, "AI_FAILED", body.Code)
	assert.Equal(t, recommend.ErrAIFailed.Error(), body.Detail)
}

func TestCreateNotConfigured(t *testing.T) {
	env := setup(t, func(cfg *config.AppConfig) { cfg.Gemini.ApiKey = "" })

	rec := env.do(http.MethodPost, "/api/recommendations", `{"prompt":"skis","userId":"u1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[webserver.ErrorResponse](t, rec)
	assert.Equal(t, "AI_NOT_CONFIGURED", body.Code)
	assert.Equal(t, "GEMINI_API_KEY environment variable is not set", body.Detail)
	assert.Zero(t, env.ai.calls)
}

func TestCreateRateLimited(t *testing.T) {
	env := setup(t, func(cfg *config.AppConfig) {
		cfg.Web.RateLimit = 0.001
		cfg.Web.RateBurst = 1
	})

	rec := env.do(http.MethodPost, "/api/recommendations", `{"prompt":"skis","userId":"u1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/recommendations", `{"prompt":"skis","userId":"u1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[webserver.ErrorResponse](t, rec).Code)
	assert.Equal(t, 1, env.ai.calls)

	// reads are not limited
	rec = env.do(http.MethodGet, "/api/history/u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitIgnoresForwardedHeaders(t *testing.T) {
	env := setup(t, func(cfg *config.AppConfig) {
		cfg.Web.RateLimit = 0.001
		cfg.Web.RateBurst = 1
	})

	post := func(forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(`{"prompt":"skis","userId":"u1"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderXForwardedFor, forwarded)
		req.Header.Set(echo.HeaderXRealIP, forwarded)
		req.RemoteAddr = "198.51.100.7:40000"
		rec := httptest.NewRecorder()
		env.e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, post("203.0.113.1").Code)
	rec := post("203.0.113.2")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "a new forwarded address must not open a new bucket")
	assert.Equal(t, 1, env.ai.calls)
}

func TestGetRecommendationsErrors(t *testing.T) {
	env := setup(t, nil)

	rec := env.do(http.MethodGet, "/api/recommendations/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Recommendation set not found", decode[webserver.ErrorResponse](t, rec).Detail)

	rec = env.do(http.MethodDelete, "/api/recommendations/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/recommendations/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Recommendation set not found", decode[webserver.ErrorResponse](t, rec).Detail)
}

func TestHistory(t *testing.T) {
	env := setup(t, nil)

	rec := env.do(http.MethodGet, "/api/history/u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User or history not found", decode[webserver.ErrorResponse](t, rec).Detail)

	var ids []string
	for _, prompt := range []string{"first", "second"} {
		rec := env.do(http.MethodPost, "/api/recommendations", `{"prompt":"`+prompt+`","userId":"u1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		ids = append(ids, decode[recommend.Recommendations](t, rec).ID)
		time.Sleep(2 * time.Millisecond)
	}

	rec = env.do(http.MethodGet, "/api/history/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]recommend.HistoryItem](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, ids[1], items[0].ID)
	assert.Equal(t, "second", items[0].PromptText)
	assert.Equal(t, ids[0], items[1].ID)
}

func TestDeleteRecommendations(t *testing.T) {
	env := setup(t, nil)

	rec := env.do(http.MethodPost, "/api/recommendations", `{"prompt":"skis","userId":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[recommend.Recommendations](t, rec).ID

	rec = env.do(http.MethodDelete, "/api/recommendations/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+id+`"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/recommendations/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/recommendations/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListStores(t *testing.T) {
	env := setup(t, nil)

	rec := env.do(http.MethodGet, "/api/stores", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[[]domain.StoreRule](t, rec)
	require.Len(t, rules, len(domain.DefaultStoreRules))
	assert.Equal(t, "rei.com", rules[0].Pattern)
	assert.Equal(t, "REI", rules[0].Name)
}
