package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter() (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(RequestLogger(logger), Recovery(logger))
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": RequestID(c)})
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r, logs
}

func TestRequestLoggerAssignsID(t *testing.T) {
	r, logs := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Contains(t, w.Body.String(), id)

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, id, entries[0].ContextMap()["request_id"])
		assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	}
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r, logs := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error_kind":"Internal","error":"erreur interne du serveur"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
