package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/animforge/internal/compiler"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/config"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/animforge/internal/markup"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
	"github.com/GriffinCanCode/animforge/internal/shared/id"
)

var (
	ErrSourceTooLarge     = errors.New("source exceeds the size limit")
	ErrInvalidComposition = errors.New("invalid composition")
	ErrFrameOutOfRange    = errors.New("frame is outside the composition")
	ErrTooManyFrames      = errors.New("too many frames requested")
	ErrCompilationFailed  = errors.New("compilation failed")
)

// Options bounds the work the service accepts.
type Options struct {
	Composition    sandbox.Composition
	MaxConcurrent  int
	AcquireTimeout time.Duration
	RenderTimeout  time.Duration
	MaxSourceBytes int
	MaxRenderDepth int
	MaxFrames      int

	// MaxDuration caps the durationInFrames a request may ask for.
	MaxDuration int
	Console     bool
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		Composition:    sandbox.DefaultComposition(),
		MaxConcurrent:  4,
		AcquireTimeout: 5 * time.Second,
		RenderTimeout:  2 * time.Second,
		MaxSourceBytes: 256 << 10,
		MaxRenderDepth: 256,
		MaxFrames:      300,
		MaxDuration:    108000,
		Console:        true,
	}
}

// Service compiles generated components and renders their frames under
// the configured concurrency and time limits.
type Service struct {
	table   *sandbox.Table
	pool    *sandbox.Pool
	opts    Options
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewService creates a preview service compiling against table.
func NewService(table *sandbox.Table, opts Options, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = DefaultOptions().MaxFrames
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultOptions().MaxDuration
	}
	return &Service{
		table:  table,
		pool:   sandbox.NewPool(opts.MaxConcurrent, opts.AcquireTimeout),
		opts:   opts,
		logger: logger.Named("preview"),
	}
}

// WithMetrics adds metrics tracking to the service
func (s *Service) WithMetrics(metrics *monitoring.Metrics) *Service {
	s.metrics = metrics
	return s
}

// Table returns the capability table components are compiled against.
func (s *Service) Table() *sandbox.Table {
	return s.table
}

// Options returns the service limits.
func (s *Service) Options() Options {
	return s.opts
}

// Close stops accepting work.
func (s *Service) Close() error {
	return s.pool.Close()
}

// Stats returns service statistics
func (s *Service) Stats() map[string]interface{} {
	return map[string]interface{}{
		"sandbox":            s.pool.Stats(),
		"capability_version": s.table.Version(),
		"capabilities":       s.table.Len(),
		"composition":        s.opts.Composition,
	}
}

// Composition fills the zero fields of c from the service defaults.
func (s *Service) Composition(c sandbox.Composition) (sandbox.Composition, error) {
	def := s.opts.Composition
	if c.ID == "" {
		c.ID = def.ID
	}
	if c.Width == 0 {
		c.Width = def.Width
	}
	if c.Height == 0 {
		c.Height = def.Height
	}
	if c.FPS == 0 {
		c.FPS = def.FPS
	}
	if c.DurationInFrames == 0 {
		c.DurationInFrames = def.DurationInFrames
	}
	if c.Width < 0 || c.Height < 0 || c.FPS < 0 || c.DurationInFrames < 0 {
		return c, fmt.Errorf("%w: %dx%d at %v fps for %d frames",
			ErrInvalidComposition, c.Width, c.Height, c.FPS, c.DurationInFrames)
	}
	if c.DurationInFrames > s.opts.MaxDuration {
		return c, fmt.Errorf("%w: %d frames, limit %d",
			ErrInvalidComposition, c.DurationInFrames, s.opts.MaxDuration)
	}
	return c, nil
}

// Compilation is one compiled source.
type Compilation struct {
	ID          id.CompileID
	Composition sandbox.Composition
	Result      compiler.Result
}

// Component returns the compiled component, nil when compilation failed.
func (c *Compilation) Component() *sandbox.Component {
	return c.Result.Component
}

// Compile compiles source for the given composition. Diagnostics are part of
// the returned Compilation; the error is reserved for requests the service
// refuses (too large, no free sandbox, cancelled).
func (s *Service) Compile(ctx context.Context, source string, comp sandbox.Composition) (*Compilation, error) {
	if s.opts.MaxSourceBytes > 0 && len(source) > s.opts.MaxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrSourceTooLarge, len(source), s.opts.MaxSourceBytes)
	}
	comp, err := s.Composition(comp)
	if err != nil {
		return nil, err
	}

	c := &Compilation{ID: id.NewCompileID(), Composition: comp}
	log := s.logger.With(logging.CompileID(c.ID))

	err = s.withSlot(ctx, func(ctx context.Context) error {
		cc := compiler.New(s.table, compiler.WithSandboxConfig(s.sandboxConfig(comp)))
		c.Result = cc.CompileContext(ctx, source)
		return nil
	})
	if err != nil {
		log.Warn("compilation refused", zap.Error(err))
		return nil, err
	}

	res := c.Result
	if s.metrics != nil {
		var kind, stage string
		if res.Err != nil {
			kind, stage = string(res.Err.Kind), string(res.Err.Stage)
		}
		s.metrics.RecordCompile(res.Success(), kind, stage, res.Duration)
	}
	if res.Success() {
		log.Info("compiled component",
			zap.Int("source_bytes", len(source)),
			zap.Duration("duration", res.Duration),
		)
	} else {
		log.Warn("compilation failed",
			zap.String("kind", string(res.Err.Kind)),
			zap.String("stage", string(res.Err.Stage)),
			zap.String("message", res.Err.Message),
			zap.Duration("duration", res.Duration),
		)
	}
	return c, nil
}

// Frame is the rendered tree of one frame.
type Frame struct {
	Index    int             `json:"frame"`
	Nodes    []*sandbox.Node `json:"nodes"`
	HTML     string          `json:"html,omitempty"`
	Duration time.Duration   `json:"-"`
}

// RenderHTML fills in the static markup of the frame.
func (f *Frame) RenderHTML(r *markup.Renderer) error {
	out, err := r.Render(f.Nodes)
	if err != nil {
		return err
	}
	f.HTML = out
	return nil
}

// RenderFrame renders one frame of a successful compilation.
func (s *Service) RenderFrame(ctx context.Context, c *Compilation, frame int) (*Frame, error) {
	component := c.Component()
	if component == nil {
		return nil, fmt.Errorf("%w: %s", ErrCompilationFailed, c.Result.Message())
	}
	if frame < 0 || frame >= c.Composition.DurationInFrames {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, frame, c.Composition.DurationInFrames)
	}

	timer := monitoring.NewTimer()
	var nodes []*sandbox.Node
	err := s.withSlot(ctx, func(ctx context.Context) error {
		var err error
		nodes, err = component.Render(ctx, frame)
		return err
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	elapsed := timer.Elapsed()
	if s.metrics != nil {
		s.metrics.RecordRender(status, elapsed)
	}
	if err != nil {
		s.logger.Debug("render failed",
			logging.CompileID(c.ID),
			logging.Frame(frame),
			zap.String("error", sandbox.Message(err)),
		)
		return nil, err
	}
	return &Frame{Index: frame, Nodes: nodes, Duration: elapsed}, nil
}

// Rendering is a compilation together with the frames rendered from it.
type Rendering struct {
	Compilation *Compilation
	Frames      []*Frame
	Console     []sandbox.LogEntry
}

// ParseFrames resolves a frame selection against comp under the service's
// frame limit.
func (s *Service) ParseFrames(spec string, comp sandbox.Composition) ([]int, error) {
	return ParseFrames(spec, comp.DurationInFrames, s.opts.MaxFrames)
}

// Render compiles source and renders frames. A failed compilation is
// returned without frames and without error.
func (s *Service) Render(ctx context.Context, source string, comp sandbox.Composition, frames []int) (*Rendering, error) {
	if len(frames) > s.opts.MaxFrames {
		return nil, fmt.Errorf("%w: %d, limit %d", ErrTooManyFrames, len(frames), s.opts.MaxFrames)
	}
	c, err := s.Compile(ctx, source, comp)
	if err != nil {
		return nil, err
	}

	out := &Rendering{Compilation: c}
	if !c.Result.Success() {
		return out, nil
	}
	if len(frames) == 0 {
		frames = []int{0}
	}
	for _, f := range frames {
		fr, err := s.RenderFrame(ctx, c, f)
		if err != nil {
			return nil, err
		}
		out.Frames = append(out.Frames, fr)
	}
	out.Console = c.Component().Console()
	return out, nil
}

func (s *Service) sandboxConfig(comp sandbox.Composition) sandbox.Config {
	cfg := sandbox.DefaultConfig()
	cfg.Timeout = s.opts.RenderTimeout
	cfg.EnableConsole = s.opts.Console
	if s.opts.MaxRenderDepth > 0 {
		cfg.MaxRenderDepth = s.opts.MaxRenderDepth
	}
	cfg.Composition = comp
	return cfg
}

// withSlot runs fn holding a sandbox slot, under the render timeout.
func (s *Service) withSlot(ctx context.Context, fn func(context.Context) error) error {
	if err := s.pool.Acquire(ctx); err != nil {
		if s.metrics != nil {
			s.metrics.RecordRejected(rejectReason(err))
		}
		return err
	}
	defer func() {
		s.pool.Release()
		if s.metrics != nil {
			s.metrics.SetSandboxInUse(s.pool.InUse())
		}
	}()
	if s.metrics != nil {
		s.metrics.SetSandboxInUse(s.pool.InUse())
	}

	if s.opts.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RenderTimeout)
		defer cancel()
	}
	return fn(ctx)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, sandbox.ErrPoolClosed):
		return "closed"
	case errors.Is(err, sandbox.ErrTimeout):
		return "timeout"
	default:
		return "canceled"
	}
}

// OptionsFromConfig derives service options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	comp := sandbox.DefaultComposition()
	comp.Width = cfg.Composition.Width
	comp.Height = cfg.Composition.Height
	comp.FPS = cfg.Composition.FPS
	comp.DurationInFrames = cfg.Composition.DurationInFrames

	opts := DefaultOptions()
	opts.Composition = comp
	opts.MaxConcurrent = cfg.Sandbox.MaxConcurrent
	opts.AcquireTimeout = cfg.Sandbox.AcquireTimeout()
	opts.RenderTimeout = cfg.Sandbox.RenderTimeout()
	opts.MaxSourceBytes = cfg.Sandbox.MaxSourceBytes
	opts.MaxRenderDepth = cfg.Sandbox.MaxRenderDepth
	opts.MaxFrames = cfg.Sandbox.MaxFrames
	opts.MaxDuration = cfg.Composition.MaxDurationInFrames
	opts.Console = cfg.Sandbox.Console
	return opts
}
