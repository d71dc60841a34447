package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/animforge/internal/api/middleware"
	"github.com/GriffinCanCode/animforge/internal/capability"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/tracing"
)

const titleSource = `export const Title = () => {
  const frame = useCurrentFrame();
  const { width } = useVideoConfig();
  return <h1 id="title" data-width={width}>Frame {frame}</h1>;
};`

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, opts preview.Options) (*gin.Engine, *preview.Service) {
	t.Helper()
	metrics := monitoring.NewMetrics()
	svc := preview.NewService(capability.Default(), opts, nil).WithMetrics(metrics)
	tracer := tracing.New("test", zap.NewNop())
	t.Cleanup(func() {
		tracer.Close()
		_ = svc.Close()
	})

	router := gin.New()
	router.Use(middleware.BodyLimit(1 << 16))
	NewHandlers(svc, metrics, tracer, nil).Register(router)
	return router, svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestRoot(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())
	w, body := doJSON(t, router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "animforge", body["service"])
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())
	w, body := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "metrics")
	assert.Contains(t, body["tracing"], "dropped")

	stats := body["preview"].(map[string]any)
	assert.Equal(t, capability.Version, stats["capability_version"])
}

func TestCapabilities(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())
	w, body := doJSON(t, router, http.MethodGet, "/capabilities", nil)
	require.Equal(t, http.StatusOK, w.Code)

	caps := body["capabilities"].([]any)
	require.Len(t, caps, len(capability.Catalog()))
	first := caps[0].(map[string]any)
	assert.Equal(t, "React", first["name"])
	assert.Equal(t, "namespace", first["kind"])
	assert.Equal(t, capability.Version, body["version"])
}

func TestCompile(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())

	t.Run("success", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/compile", CompileRequest{Source: titleSource, IncludeCode: true})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "succeeded", body["stage"])
		assert.NotContains(t, body, "error")
		assert.NotEmpty(t, body["code"])
		assert.True(t, strings.HasPrefix(body["id"].(string), "cmp_"))
	})

	t.Run("diagnostic", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/compile", CompileRequest{Source: "   "})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, body["success"])
		assert.NotContains(t, body, "code")

		diag := body["error"].(map[string]any)
		assert.Equal(t, "No code provided", diag["message"])
		assert.Equal(t, "empty_input", diag["kind"])
		assert.Equal(t, "normalizing", diag["stage"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/compile", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
	})
}

func TestCompileTooLarge(t *testing.T) {
	opts := preview.DefaultOptions()
	opts.MaxSourceBytes = 32
	router, _ := setupRouter(t, opts)

	w, _ := doJSON(t, router, http.MethodPost, "/compile", CompileRequest{Source: strings.Repeat("a", 64)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/compile", CompileRequest{Source: strings.Repeat("a", 1<<17)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRender(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())

	tests := []struct {
		name   string
		frames any
		want   []float64
	}{
		{"default", nil, []float64{0}},
		{"range", "0-20:10", []float64{0, 10, 20}},
		{"array", []int{3, 1}, []float64{3, 1}},
		{"number", 7, []float64{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := map[string]any{
				"source":      titleSource,
				"composition": map[string]any{"width": 640, "durationInFrames": 30},
			}
			if tt.frames != nil {
				req["frames"] = tt.frames
			}
			w, body := doJSON(t, router, http.MethodPost, "/render", req)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, true, body["success"])

			frames := body["frames"].([]any)
			require.Len(t, frames, len(tt.want))
			for i, f := range frames {
				frame := f.(map[string]any)
				assert.Equal(t, tt.want[i], frame["frame"])

				h1 := frame["nodes"].([]any)[0].(map[string]any)
				assert.Equal(t, "h1", h1["type"])
				assert.EqualValues(t, 640, h1["props"].(map[string]any)["data-width"])
			}
		})
	}
}

func TestRenderHTML(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())

	w, body := doJSON(t, router, http.MethodPost, "/render", map[string]any{
		"source":      titleSource,
		"composition": map[string]any{"width": 320},
		"html":        true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	frame := body["frames"].([]any)[0].(map[string]any)
	assert.Contains(t, frame["html"], `<h1 data-width="320" id="title">Frame 0</h1>`)

	_, body = doJSON(t, router, http.MethodPost, "/render", map[string]any{"source": titleSource})
	assert.NotContains(t, body["frames"].([]any)[0], "html")
}

func TestRenderFailedCompilation(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())
	w, body := doJSON(t, router, http.MethodPost, "/render", map[string]any{"source": "return 42;"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, body["frames"])
	assert.Equal(t, "shape", body["error"].(map[string]any)["kind"])
}

func TestRenderErrors(t *testing.T) {
	opts := preview.DefaultOptions()
	opts.MaxFrames = 5
	opts.RenderTimeout = 100 * time.Millisecond
	router, _ := setupRouter(t, opts)

	tests := []struct {
		name   string
		req    map[string]any
		status int
	}{
		{"frame out of range", map[string]any{"source": titleSource, "frames": []int{150}}, http.StatusBadRequest},
		{"bad selection", map[string]any{"source": titleSource, "frames": "x-y"}, http.StatusBadRequest},
		{"bad frames type", map[string]any{"source": titleSource, "frames": true}, http.StatusBadRequest},
		{"too many frames", map[string]any{"source": titleSource, "frames": "0-9"}, http.StatusBadRequest},
		{"too many listed frames", map[string]any{"source": titleSource, "frames": []int{0, 1, 2, 3, 4, 5}}, http.StatusBadRequest},
		{"every frame of a long composition", map[string]any{
			"source":      titleSource,
			"composition": map[string]any{"durationInFrames": 100000},
			"frames":      "all",
		}, http.StatusBadRequest},
		{"composition too long", map[string]any{
			"source":      titleSource,
			"composition": map[string]any{"durationInFrames": 2000000000},
			"frames":      "all",
		}, http.StatusBadRequest},
		{"negative composition", map[string]any{"source": titleSource, "composition": map[string]any{"fps": -1}}, http.StatusBadRequest},
		{"runtime error", map[string]any{
			"source": `export const X = () => { const f = useCurrentFrame(); if (f > 0) { throw new Error("late"); } return null; };`,
			"frames": []int{2},
		}, http.StatusUnprocessableEntity},
		{"timeout", map[string]any{
			"source": `export const X = () => { const f = useCurrentFrame(); if (f > 0) { while (true) {} } return null; };`,
			"frames": []int{1},
		}, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, router, http.MethodPost, "/render", tt.req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRenderRuntimeErrorMessage(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())
	_, body := doJSON(t, router, http.MethodPost, "/render", map[string]any{
		"source": `export const X = () => { const f = useCurrentFrame(); if (f > 0) { throw new Error("late"); } return null; };`,
		"frames": "3",
	})
	assert.Equal(t, "late", body["error"])
}

func TestServiceUnavailable(t *testing.T) {
	router, svc := setupRouter(t, preview.DefaultOptions())
	require.NoError(t, svc.Close())

	w, _ := doJSON(t, router, http.MethodPost, "/compile", CompileRequest{Source: titleSource})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupRouter(t, preview.DefaultOptions())
	doJSON(t, router, http.MethodPost, "/compile", CompileRequest{Source: titleSource})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `animforge_compilations_total{kind="",outcome="success",stage=""} 1`)
}

func TestFrameSelectionUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want FrameSelection
	}{
		{`"0-5"`, FrameSelection{Spec: "0-5"}},
		{`[1,2]`, FrameSelection{Frames: []int{1, 2}}},
		{`4`, FrameSelection{Frames: []int{4}}},
		{`null`, FrameSelection{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var got FrameSelection
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad FrameSelection
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}

func TestFrameSelectionMarshal(t *testing.T) {
	tests := []struct {
		in   FrameSelection
		want string
	}{
		{FrameSelection{Spec: "all"}, `"all"`},
		{FrameSelection{Frames: []int{2, 4}}, `[2,4]`},
		{FrameSelection{}, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			raw, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}
