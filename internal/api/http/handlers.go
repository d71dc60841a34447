package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/animforge/internal/capability"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/animforge/internal/markup"
)

// Version is reported by the root endpoint.
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	preview *preview.Service
	markup  *markup.Renderer
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// NewHandlers creates a new handler set. metrics may be nil; tracer may not.
func NewHandlers(svc *preview.Service, metrics *monitoring.Metrics, tracer *tracing.Tracer, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		preview: svc,
		markup:  markup.NewRenderer(),
		metrics: metrics,
		tracer:  tracer,
		logger:  logger.Named("http"),
	}
}

// Register mounts the handlers on r.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/capabilities", h.Capabilities)
	r.POST("/compile", h.Compile)
	r.POST("/render", h.Render)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "animforge",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"preview": h.preview.Stats(),
		"tracing": h.tracer.Stats(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// Capabilities lists the capability table in binding order
func (h *Handlers) Capabilities(c *gin.Context) {
	table := h.preview.Table()
	c.JSON(http.StatusOK, gin.H{
		"version":      table.Version(),
		"capabilities": capability.Catalog(),
	})
}

// Compile compiles one component and reports its diagnostic
func (h *Handlers) Compile(c *gin.Context) {
	var req CompileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	span, ctx := h.tracer.StartSpan(c.Request.Context(), "preview.compile")
	defer h.finish(span)

	comp, err := h.preview.Compile(ctx, req.Source, req.Composition)
	if err != nil {
		span.SetError(err)
		respondError(c, err)
		return
	}
	span.SetTag("compile_id", comp.ID.String())
	span.SetTag("success", strconv.FormatBool(comp.Result.Success()))

	c.JSON(http.StatusOK, NewCompileResponse(comp, req.IncludeCode))
}

// Render compiles a component and renders the selected frames
func (h *Handlers) Render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	composition, err := h.preview.Composition(req.Composition)
	if err != nil {
		respondError(c, err)
		return
	}
	frames, err := req.Frames.Resolve(composition.DurationInFrames, h.preview.Options().MaxFrames)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	span, ctx := h.tracer.StartSpan(c.Request.Context(), "preview.render")
	defer h.finish(span)
	span.SetTag("frames", strconv.Itoa(len(frames)))

	r, err := h.preview.Render(ctx, req.Source, composition, frames)
	if err != nil {
		span.SetError(err)
		h.logger.Debug("render refused", zap.Error(err))
		respondError(c, err)
		return
	}
	span.SetTag("compile_id", r.Compilation.ID.String())

	if req.HTML {
		for _, f := range r.Frames {
			if err := f.RenderHTML(h.markup); err != nil {
				respondError(c, err)
				return
			}
		}
	}
	c.JSON(http.StatusOK, NewRenderResponse(r, req.IncludeCode))
}

func (h *Handlers) finish(span *tracing.Span) {
	span.Finish()
	h.tracer.Submit(span)
}
