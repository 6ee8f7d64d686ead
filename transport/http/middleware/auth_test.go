package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"lodge/config"
	"lodge/infras/jwt"
	jwtMocks "lodge/infras/jwt/mocks"
	otelMocks "lodge/infras/otel/mocks"
	"lodge/permissions"
	"lodge/shared/constant"
	"lodge/shared/secret"
	"lodge/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const table = `{
	"endpoints": [
		{"path": "/health", "method": "GET", "skip": true},
		{"path": "/v1/rooms/{number}", "method": "GET", "permissions": ["guest", "clerk", "admin"]},
		{"path": "/v1/rooms/{number}/reservations/{id}", "method": "DELETE", "permissions": ["clerk", "admin"]},
		{"path": "/v1/reservations", "method": "DELETE", "permissions": ["admin"]}
	]
}`

func router(t *testing.T, validator jwt.JWT, apiKey string) http.Handler {
	t.Helper()

	data, err := permissions.Parse([]byte(table))
	require.NoError(t, err)

	cfg := &config.Config{}
	if apiKey != "" {
		cfg.App.APIKeyHash, err = secret.Hash(apiKey)
		require.NoError(t, err)
	}

	authRole := middleware.NewAuthRoleMiddleware(validator, otelMocks.NewOtel(), data, cfg)

	ok := func(writer http.ResponseWriter, request *http.Request) {
		user, _ := request.Context().Value(constant.ContextKeyUserID).(string)
		writer.Header().Set("X-User", user)
		writer.WriteHeader(http.StatusNoContent)
	}

	mux := chi.NewRouter()
	mux.Use(authRole.APIKey, authRole.Auth, authRole.RBAC)
	mux.Get("/health", ok)
	mux.Route("/v1", func(v1 chi.Router) {
		v1.Route("/rooms", func(rooms chi.Router) {
			rooms.Get("/{number}", ok)
			rooms.Delete("/{number}/reservations/{id}", ok)
		})
		v1.Route("/reservations", func(reservations chi.Router) {
			reservations.Delete("/", ok)
		})
	})

	return mux
}

func call(handler http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, nil)
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func bearer(token string) map[string]string {
	return map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token}
}

func TestAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	validator := jwtMocks.NewMockJWT(ctrl)

	validator.EXPECT().ValidateToken(gomock.Any(), "guest-token").
		Return(&jwt.Claims{UserID: "u-1", Role: constant.RoleGuest, TokenID: "t-1"}, nil).AnyTimes()
	validator.EXPECT().ValidateToken(gomock.Any(), "clerk-token").
		Return(&jwt.Claims{UserID: "u-2", Role: constant.RoleClerk, TokenID: "t-2"}, nil).AnyTimes()
	validator.EXPECT().ValidateToken(gomock.Any(), "old-token").
		Return(nil, jwt.ErrExpiredToken).AnyTimes()

	handler := router(t, validator, "")

	tests := []struct {
		name     string
		method   string
		target   string
		headers  map[string]string
		wantCode int
		wantUser string
	}{
		{
			name:     "skipped route needs no token",
			method:   http.MethodGet,
			target:   "/health",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "missing token",
			method:   http.MethodGet,
			target:   "/v1/rooms/101",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed header",
			method:   http.MethodGet,
			target:   "/v1/rooms/101",
			headers:  map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "expired token",
			method:   http.MethodGet,
			target:   "/v1/rooms/101",
			headers:  bearer("old-token"),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "guest reads a room",
			method:   http.MethodGet,
			target:   "/v1/rooms/101",
			headers:  bearer("guest-token"),
			wantCode: http.StatusNoContent,
			wantUser: "u-1",
		},
		{
			name:     "guest cannot cancel",
			method:   http.MethodDelete,
			target:   "/v1/rooms/101/reservations/r-1",
			headers:  bearer("guest-token"),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "clerk cancels",
			method:   http.MethodDelete,
			target:   "/v1/rooms/101/reservations/r-1",
			headers:  bearer("clerk-token"),
			wantCode: http.StatusNoContent,
			wantUser: "u-2",
		},
		{
			name:     "clerk cannot clear",
			method:   http.MethodDelete,
			target:   "/v1/reservations",
			headers:  bearer("clerk-token"),
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := call(handler, tt.method, tt.target, tt.headers)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Equal(t, tt.wantUser, recorder.Header().Get("X-User"))
		})
	}
}

func TestAPIKey(t *testing.T) {
	// ValidateToken is never expected: internal callers skip token checks.
	validator := jwtMocks.NewMockJWT(gomock.NewController(t))

	t.Run("matching key skips auth and rbac", func(t *testing.T) {
		recorder := call(router(t, validator, "s3cret"), http.MethodDelete, "/v1/reservations",
			map[string]string{constant.RequestHeaderAPIKey: "s3cret"})

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, "internal", recorder.Header().Get("X-User"))
	})

	t.Run("wrong key", func(t *testing.T) {
		recorder := call(router(t, validator, "s3cret"), http.MethodDelete, "/v1/reservations",
			map[string]string{constant.RequestHeaderAPIKey: "guess"})

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("no key configured", func(t *testing.T) {
		recorder := call(router(t, validator, ""), http.MethodGet, "/v1/rooms/101",
			map[string]string{constant.RequestHeaderAPIKey: "anything"})

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestRBAC_DeniesWithoutTable(t *testing.T) {
	cfg := &config.Config{}
	authRole := middleware.NewAuthRoleMiddleware(jwtMocks.NewMockJWT(gomock.NewController(t)), otelMocks.NewOtel(), nil, cfg)

	handler := authRole.RBAC(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	request := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	request = request.WithContext(context.WithValue(request.Context(), constant.ContextKeyUserRole, constant.RoleAdmin))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
