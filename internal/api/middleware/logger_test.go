package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoggerFromContextCarriesCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(CorrelationIDMiddleware())
	router.Use(SlogLoggerMiddleware(logger))
	router.GET("/ping", func(c *gin.Context) {
		LoggerFromContext(c).Info("handled")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Correlation-ID", "cid-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if !strings.Contains(buf.String(), `"correlation_id":"cid-123"`) {
		t.Errorf("handler log line missing correlation ID: %s", buf.String())
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if LoggerFromContext(c) == nil {
		t.Fatal("expected default logger when middleware is absent")
	}
}
