package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lodge/config"
	otelMocks "lodge/infras/otel/mocks"
	"lodge/shared/cache"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	"lodge/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func noContent(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusNoContent)
}

func limited(t *testing.T, redisCache cache.RedisCache) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, redisCache)

	return app.RateLimit()(http.HandlerFunc(noContent))
}

func TestRateLimit(t *testing.T) {
	t.Run("first request starts the window", func(t *testing.T) {
		redisCache := cacheMocks.NewMockRedisCache(gomock.NewController(t))
		redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
		redisCache.EXPECT().Save(gomock.Any(), gomock.Any(), 1, 60).Return(nil)

		recorder := httptest.NewRecorder()
		limited(t, redisCache).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, "1", recorder.Header().Get(constant.RequestHeaderRateLimitRemaining))
	})

	t.Run("over the limit", func(t *testing.T) {
		redisCache := cacheMocks.NewMockRedisCache(gomock.NewController(t))
		redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ string, value any) error {
				*value.(*int) = 2

				return nil
			})

		recorder := httptest.NewRecorder()
		limited(t, redisCache).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))

		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
		assert.Equal(t, "60", recorder.Header().Get(constant.ResponseHeaderRetryAfter))
	})

	t.Run("cache outage fails open", func(t *testing.T) {
		redisCache := cacheMocks.NewMockRedisCache(gomock.NewController(t))
		redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		recorder := httptest.NewRecorder()
		limited(t, redisCache).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		app := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, nil)

		recorder := httptest.NewRecorder()
		app.RateLimit()(http.HandlerFunc(noContent)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.CORS.Enable = true
	cfg.App.CORS.AllowedOrigins = []string{"https://front.example.com"}
	cfg.App.CORS.AllowedMethods = []string{http.MethodGet, http.MethodPost}

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, nil)
	handler := app.CORS()(http.HandlerFunc(noContent))

	request := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	request.Header.Set("Origin", "https://front.example.com")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "https://front.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	request.Header.Set("Origin", "https://evil.example.com")

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccessLog(t *testing.T) {
	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, nil)

	recorder := httptest.NewRecorder()
	app.AccessLog(http.HandlerFunc(noContent)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}
