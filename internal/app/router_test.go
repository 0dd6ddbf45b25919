package app_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bancharampur/infogate/internal/admin"
	"github.com/bancharampur/infogate/internal/app"
	"github.com/bancharampur/infogate/internal/auth"
	"github.com/bancharampur/infogate/internal/observability"
	_ "github.com/bancharampur/infogate/testing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := auth.NewService(auth.NewJWTVerifier([]byte("secret")))
	return app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         &app.Config{AppEnv: "test", RateLimitPerMinute: 1000, CORSAllowedOrigin: "*"},
		AuthMiddleware: authSvc.Middleware(logger),
		AdminHandler:   admin.NewHandler(nil, logger),
		Metrics:        observability.NewMetrics(),
	})
}

func TestRouterAnswersPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/admin-ai-chat", nil)
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "authorization")
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "content-type")
}

func TestRouterRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admin-ai-chat", strings.NewReader(`{"message":"Delete post ID 1"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, auth.ErrMissingToken.Error(), body["error"])
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouterExposesMetrics(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `infogate_http_requests_total{code="200",route="/healthz"} 1`)
}
