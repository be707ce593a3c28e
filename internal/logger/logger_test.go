package logger_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ms-fyyur/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewLogger(logger.Options{Service: "test", Out: &buf})
	require.NoError(t, err)

	l.Info("booking", "show listed")
	l.Warn("trivia", "page out of range")

	out := buf.String()
	assert.Contains(t, out, "INFO  [BOOKING   ] show listed")
	assert.Contains(t, out, "WARN  [TRIVIA    ] page out of range")
	assert.Contains(t, out, "logger_test.go")
}

func TestLoggerWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	l, err := logger.NewLogger(logger.Options{Service: "fyyur", Dir: dir, Out: &bytes.Buffer{}})
	require.NoError(t, err)

	l.LogDatabase("INSERT", "venues", "created 1")
	l.Close()

	files, err := filepath.Glob(filepath.Join(dir, "fyyur-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	var last logger.LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &last))
	}
	assert.Equal(t, "DATABASE", last.Category)
	assert.Equal(t, "fyyur", last.Service)
	assert.Equal(t, "[INSERT] venues - created 1", last.Message)
}

func TestChiMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewLogger(logger.Options{Out: &buf})
	require.NoError(t, err)

	var seen string
	r := chi.NewRouter()
	r.Use(l.Middleware)
	r.Get("/venues", func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(logger.RequestIDHeader))
	assert.Contains(t, buf.String(), "GET /venues - 418")
}

func TestGinMiddlewareKeepsIncomingRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l, err := logger.NewLogger(logger.Options{Out: &buf})
	require.NoError(t, err)

	r := gin.New()
	r.Use(l.Gin())
	r.GET("/categories", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set(logger.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Contains(t, buf.String(), "GET /categories - 200")
}
