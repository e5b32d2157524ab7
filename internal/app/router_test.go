package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidpech/logviewer/internal/app/diagnostics"
	"github.com/kidpech/logviewer/internal/app/web"
	"github.com/kidpech/logviewer/internal/config"
	"github.com/kidpech/logviewer/internal/infrastructure/logging"
)

type feedEntry struct {
	TimestampTicks int64
	Level          string
	Message        string
}

func newTestRouter(buffer *diagnostics.LogBuffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		Config:      &config.Config{App: config.AppConfig{Env: "test"}},
		Diagnostics: diagnostics.NewHandler(buffer, web.Index),
		Logger:      zap.NewNop(),
	})
}

func doGet(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouterEndToEnd(t *testing.T) {
	buffer := diagnostics.NewLogBuffer()
	host := logging.WithCapture(zap.NewNop(), logging.NewCaptureCore(buffer))
	r := newTestRouter(buffer)

	host.Info("a")
	host.Error("b")

	rec := doGet(r, "/logs?since=0")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []feedEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
	require.Equal(t, feedEntry{all[0].TimestampTicks, "Message", "a"}, all[0])
	require.Equal(t, feedEntry{all[1].TimestampTicks, "Error", "b"}, all[1])

	rec = doGet(r, "/logs?since=0&level=Error")
	var errorsOnly []feedEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errorsOnly))
	require.Equal(t, []feedEntry{all[1]}, errorsOnly)

	rec = doGet(r, fmt.Sprintf("/logs?since=%d", all[1].TimestampTicks))
	require.Equal(t, "[]", rec.Body.String())

	rec = doGet(r, "/logs?since=notanumber")
	var fallback []feedEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fallback))
	require.Equal(t, all, fallback)
}

func TestRouterPollingDoesNotFeedBuffer(t *testing.T) {
	buffer := diagnostics.NewLogBuffer()
	host := logging.WithCapture(zap.NewNop(), logging.NewCaptureCore(buffer))
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{
		Diagnostics: diagnostics.NewHandler(buffer, web.Index),
		Logger:      host,
	})

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doGet(r, "/logs").Code)
	}
	require.Zero(t, buffer.Len())
}

func TestRouterUnknownRoutes(t *testing.T) {
	r := newTestRouter(diagnostics.NewLogBuffer())

	for _, target := range []string{"/nonexistent", "/logs/", "/health/", "/logs/?since=0"} {
		rec := doGet(r, target)
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		require.Empty(t, rec.Header().Get("Location"), target)
		require.Empty(t, rec.Body.String(), target)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logs", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestRouterServesViewerPage(t *testing.T) {
	rec := doGet(newTestRouter(diagnostics.NewLogBuffer()), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "/logs?since=")
}

func TestRouterExposesMetricsWhenEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{
		Config:      &config.Config{Monitoring: config.MonitoringConfig{PrometheusEnabled: true}},
		Diagnostics: diagnostics.NewHandler(diagnostics.NewLogBuffer(), web.Index),
		Logger:      zap.NewNop(),
	})
	require.Equal(t, http.StatusOK, doGet(r, "/metrics").Code)

	require.Equal(t, http.StatusNotFound, doGet(newTestRouter(diagnostics.NewLogBuffer()), "/metrics").Code)
}
