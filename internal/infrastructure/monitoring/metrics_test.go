package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordCompile(true, "", "", time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Compilations.WithLabelValues("success", "", "")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Compilations.WithLabelValues("success", "", "")))
}

func TestRecordCompileSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordCompile(true, "", "", 10*time.Millisecond)
	m.RecordCompile(false, "shape", "invoking", 30*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compilations.WithLabelValues("failure", "shape", "invoking")))

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Compilations)
	assert.EqualValues(t, 1, snap.FailedCompilations)
	assert.InDelta(t, 0.02, snap.AvgCompileSeconds, 1e-9)
	assert.Greater(t, snap.UptimeSeconds, 0.0)
}

func TestWSConnections(t *testing.T) {
	m := NewMetrics()
	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()
	m.RecordWSMessage("out", "frame")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))
	assert.EqualValues(t, 1, m.Snapshot().ActiveStreams)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSMessages.WithLabelValues("out", "frame")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.EqualValues(t, 1, m.Snapshot().TotalErrors)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "animforge_http_requests_total"))
	assert.True(t, strings.Contains(body, "animforge_uptime_seconds"))
}

func TestTimer(t *testing.T) {
	m := NewMetrics()
	timer := NewTimer()
	time.Sleep(time.Millisecond)

	d := timer.ObserveRender(m, "ok")
	assert.GreaterOrEqual(t, d, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("ok")))
}
