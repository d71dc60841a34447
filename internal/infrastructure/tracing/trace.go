package tracing

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/animforge/internal/shared/id"
)

// Propagation headers.
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

// spanBuffer bounds the spans waiting for the collector.
const spanBuffer = 1024

type (
	TraceID string
	SpanID  string
)

// Span is one timed operation of a trace.
type Span struct {
	TraceID    TraceID
	SpanID     SpanID
	ParentID   SpanID
	Name       string
	StartTime  time.Time
	Duration   time.Duration
	Tags       map[string]string
	Error      error
	StatusCode int
}

// Finish stops the span clock.
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// SetError records err; a span without a status becomes a 500.
func (s *Span) SetError(err error) {
	s.Error = err
	if s.StatusCode == 0 {
		s.StatusCode = http.StatusInternalServerError
	}
}

func (s *Span) SetStatus(code int) {
	s.StatusCode = code
}

func (s *Span) fields(service string) []zap.Field {
	fields := []zap.Field{
		zap.String("trace_id", string(s.TraceID)),
		zap.String("span_id", string(s.SpanID)),
		zap.String("operation", s.Name),
		zap.String("service", service),
		zap.Duration("duration", s.Duration),
		zap.Int("status", s.StatusCode),
	}
	if s.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(s.ParentID)))
	}
	keys := make([]string, 0, len(s.Tags))
	for k := range s.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, s.Tags[k]))
	}
	if s.Error != nil {
		fields = append(fields, zap.Error(s.Error))
	}
	return fields
}

// Tracer logs finished spans from a background collector so request paths
// never block on logging.
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	logged  atomic.Int64
	dropped atomic.Int64
}

// New creates a tracer for service and starts its collector.
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger.Named("trace"),
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	t.wg.Add(1)
	go t.collect()
	return t
}

// StartSpan opens a span that continues the trace carried by ctx, or a new
// trace when there is none.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.New())
	}
	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(id.New()),
		ParentID:  GetSpanID(ctx),
		Name:      name,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}
	return span, WithTrace(ctx, span.TraceID, span.SpanID)
}

// Submit queues a finished span. Spans are dropped when the buffer is full
// or the tracer is closed.
func (t *Tracer) Submit(span *Span) {
	select {
	case <-t.done:
		t.dropped.Add(1)
		return
	default:
	}
	select {
	case t.spans <- span:
	default:
		t.dropped.Add(1)
	}
}

// Stats reports how many spans were logged and dropped.
func (t *Tracer) Stats() map[string]int64 {
	return map[string]int64{
		"logged":  t.logged.Load(),
		"dropped": t.dropped.Load(),
		"queued":  int64(len(t.spans)),
	}
}

// Close logs the spans still queued and stops the collector.
func (t *Tracer) Close() {
	t.once.Do(func() { close(t.done) })
	t.wg.Wait()
}

func (t *Tracer) collect() {
	defer t.wg.Done()
	for {
		select {
		case span := <-t.spans:
			t.log(span)
		case <-t.done:
			for {
				select {
				case span := <-t.spans:
					t.log(span)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracer) log(span *Span) {
	t.logged.Add(1)
	if span.Error != nil {
		t.logger.Warn("span completed with error", span.fields(t.service)...)
		return
	}
	t.logger.Debug("span completed", span.fields(t.service)...)
}

// Extract reads propagated trace headers.
func Extract(h http.Header) (TraceID, SpanID) {
	return TraceID(h.Get(HeaderTraceID)), SpanID(h.Get(HeaderSpanID))
}

// Inject writes the trace carried by ctx into outgoing headers.
func Inject(ctx context.Context, h http.Header) {
	if traceID := GetTraceID(ctx); traceID != "" {
		h.Set(HeaderTraceID, string(traceID))
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		h.Set(HeaderSpanID, string(spanID))
	}
}

type contextKey int

const (
	traceIDKey contextKey = iota
	spanIDKey
)

// WithTrace returns ctx continuing the given trace. Empty IDs are ignored.
func WithTrace(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	return traceID
}

func GetSpanID(ctx context.Context) SpanID {
	spanID, _ := ctx.Value(spanIDKey).(SpanID)
	return spanID
}
