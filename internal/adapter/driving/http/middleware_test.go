package httphandler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWithRecovery_PanicBecomes500(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/insights", nil)

	withRecovery(discardLogger(), panicking).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestWithRecovery_HealthyHandlerPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	withRecovery(discardLogger(), next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRecorder_CapturesStatusAndBytes(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})

	rec := httptest.NewRecorder()
	inner := &recorder{ResponseWriter: rec}
	next.ServeHTTP(inner, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, inner.status)
	assert.Equal(t, len("missing"), inner.bytes)
}

func TestRecorder_ImplicitOKOnFirstWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	inner := &recorder{ResponseWriter: rec}

	_, err := inner.Write([]byte("ok"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, inner.status)
}

func TestWithRequestLog_EmitsStatusAndRefresh(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/repos/stats?refresh=1", nil)

	withRequestLog(logger, next).ServeHTTP(rec, req)

	line := buf.String()
	assert.Contains(t, line, "status=502")
	assert.Contains(t, line, "refresh=true")
	assert.Contains(t, line, "path=/api/v1/metrics/repos/stats")
}
