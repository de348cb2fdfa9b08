package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newEcho(logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.Use(RequestID(), AccessLog(logger))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Request().Header.Get(RequestIDHeader))
	})
	return e
}

func TestRequestID_GeneratesAndKeeps(t *testing.T) {
	e := newEcho(nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestAccessLog_WritesStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := newEcho(zap.New(core))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entries := logs.FilterMessage("http.request").All()
	if assert.Len(t, entries, 1) {
		assert.EqualValues(t, http.StatusNotFound, entries[0].ContextMap()["status"])
	}
}
