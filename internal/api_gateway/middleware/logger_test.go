package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("LogsRequestDetails", func(t *testing.T) {
		var logBuffer bytes.Buffer
		testLogger := slog.New(slog.NewJSONHandler(&logBuffer, nil))

		router := gin.New()
		router.Use(CorrelationID())
		router.Use(Logger(testLogger))
		router.GET("/loans", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		providedID := uuid.New().String()
		req, _ := http.NewRequest(http.MethodGet, "/loans?status=APPROVED", nil)
		req.Header.Set(CorrelationIDHeader, providedID)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &entry))
		assert.Equal(t, "HTTP request", entry["msg"])
		assert.Equal(t, http.MethodGet, entry["method"])
		assert.Equal(t, "/loans?status=APPROVED", entry["path"])
		assert.Equal(t, float64(http.StatusOK), entry["status"])
		assert.Equal(t, providedID, entry["correlation_id"])
	})

	t.Run("LogsErrorStatusCodes", func(t *testing.T) {
		var logBuffer bytes.Buffer
		testLogger := slog.New(slog.NewJSONHandler(&logBuffer, nil))

		router := gin.New()
		router.Use(Logger(testLogger))
		router.GET("/missing", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		req, _ := http.NewRequest(http.MethodGet, "/missing", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &entry))
		assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	})
}
