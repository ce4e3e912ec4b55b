package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/ecoscan/internal/domain/recycling"
	"github.com/bryanwahyu/ecoscan/internal/domain/uploads"
)

func TestLogging_RecordsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/health", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["bytes"])
}

func TestMetrics_CountsByRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/uploads/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, name := range []string{"a.jpg", "b.jpg"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/uploads/{name}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsInProgress))
}

func TestMetrics_ObserveAnalysis(t *testing.T) {
	m := NewMetrics()
	m.ObserveAnalysis("gemini", recycling.OutcomeSuccess, time.Second)
	m.ObserveAnalysis("gemini", recycling.OutcomeFallback, 2*time.Second)
	m.ObserveAnalysis("gemini", recycling.OutcomeSuccess, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.analysesTotal.WithLabelValues("gemini", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analysesTotal.WithLabelValues("gemini", "fallback")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.analysisDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveAnalysis("stub", recycling.OutcomeSuccess, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ecoscan_analyses_total{outcome="success",provider="stub"} 1`)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "burst exhausted")
	assert.True(t, rl.Allow("b"), "other clients unaffected")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"), "refilled")
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	require.Equal(t, 2, rl.size())

	now = now.Add(visitorTTL + sweepInterval + time.Second)
	rl.Allow("c")
	assert.Equal(t, 1, rl.size())
}

func TestRateLimit_Middleware(t *testing.T) {
	h := RateLimit(NewRateLimiter(0.001, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("/api/analyze"))
	assert.Equal(t, http.StatusTooManyRequests, call("/api/analyze"))
	assert.Equal(t, http.StatusOK, call("/api/health"))
	assert.Equal(t, http.StatusOK, call("/health/ready"))
}

func TestReadinessHandler(t *testing.T) {
	ok := CheckerFunc(func(context.Context) error { return nil })
	bad := CheckerFunc(func(context.Context) error { return errors.New("bucket unreachable") })

	rec := httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"uploads": ok})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"uploads": ok, "minio": bad})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "not ready", status.Status)
	assert.Equal(t, "bucket unreachable", status.Checks["minio"].Message)
	assert.Equal(t, "healthy", status.Checks["uploads"].Status)
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "ok", string(body))
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"photo.JPG", ".jpg", false},
		{"bottle.png", ".png", false},
		{"IMG_0001.HEIC", ".heic", false},
		{"camera", ".jpg", false},
		{"", ".jpg", false},
		{"notes.txt", "", true},
		{"payload.jpg.exe", "", true},
		{"evil\x00.php", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := ImageExtension(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, uploads.ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateUploadName(t *testing.T) {
	assert.NoError(t, ValidateUploadName("0b6c4a9e-3f57-4d1e-9c52-1f0d2c3b4a59.jpg"))
	assert.NoError(t, ValidateUploadName("0b6c4a9e-3f57-4d1e-9c52-1f0d2c3b4a59.webp"))

	for _, name := range []string{
		"../config.yaml",
		"0b6c4a9e-3f57-4d1e-9c52-1f0d2c3b4a59.txt",
		".health-123",
		strings.Repeat("a", 40) + ".jpg",
	} {
		assert.Error(t, ValidateUploadName(name), name)
	}
}
