package ws

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
	"github.com/GriffinCanCode/animforge/internal/shared/id"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	maxMessageBytes = 1 << 20
)

var errNothingCompiled = errors.New("nothing compiled on this stream")

// Handler manages WebSocket connections
type Handler struct {
	preview  *preview.Service
	metrics  *monitoring.Metrics
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(svc *preview.Service, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		preview: svc,
		metrics: metrics,
		logger:  logger.Named("ws"),
		upgrader: websocket.Upgrader{
			// Origins are checked by the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	s := &session{
		handler: h,
		conn:    conn,
		id:      id.NewStreamID(),
	}
	s.log = h.logger.With(logging.StreamID(s.id))
	s.log.Debug("stream opened", zap.String("remote", c.ClientIP()))
	s.run(c.Request.Context())
	s.log.Debug("stream closed")
}

// session is the state of one connection.
type session struct {
	handler *Handler
	conn    *websocket.Conn
	id      id.StreamID
	log     *logging.Logger
	writeMu sync.Mutex

	mu          sync.Mutex
	compilation *preview.Compilation
	cancel      context.CancelFunc
	done        chan struct{}
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer func() {
		cancel()
		s.stopRender()
	}()

	s.conn.SetReadLimit(maxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go s.keepAlive(ctx)

	welcome := newMessage(TypeSystem, "")
	welcome.StreamID = s.id.String()
	welcome.Message = "Connected to animforge preview stream"
	s.send(welcome)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read failed", zap.Error(err))
			}
			return
		}

		var req Request
		if err := sonic.Unmarshal(data, &req); err != nil {
			s.sendError("", "invalid message: "+err.Error())
			continue
		}
		if req.RequestID == "" {
			req.RequestID = uuid.NewString()
		}
		s.recordIncoming(req.Type)

		switch req.Type {
		case TypeCompile:
			s.compile(ctx, req)
		case TypeRender:
			s.handleRender(ctx, req)
		case TypeCancel:
			if !s.stopRender() {
				msg := newMessage(TypeCancelled, req.RequestID)
				msg.Message = "no render in progress"
				s.send(msg)
			}
		case TypePing:
			s.send(newMessage(TypePong, req.RequestID))
		default:
			s.sendError(req.RequestID, fmt.Sprintf("unknown message type %q", req.Type))
		}
	}
}

func (s *session) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *session) compile(ctx context.Context, req Request) (*preview.Compilation, bool) {
	var comp sandbox.Composition
	if req.Composition != nil {
		comp = *req.Composition
	}
	c, err := s.handler.preview.Compile(ctx, req.Source, comp)
	if err != nil {
		s.sendError(req.RequestID, err.Error())
		return nil, false
	}

	s.mu.Lock()
	s.compilation = c
	s.mu.Unlock()

	res := c.Result
	success := res.Success()
	msg := newMessage(TypeCompiled, req.RequestID)
	msg.CompileID = c.ID.String()
	msg.Success = &success
	msg.Stage = res.Stage
	msg.Error = res.Err
	msg.DurationMS = float64(res.Duration.Microseconds()) / 1000
	s.send(msg)
	return c, success
}

func (s *session) handleRender(ctx context.Context, req Request) {
	var c *preview.Compilation
	if req.Source != "" {
		var ok bool
		if c, ok = s.compile(ctx, req); !ok {
			return
		}
	} else {
		s.mu.Lock()
		c = s.compilation
		s.mu.Unlock()
	}
	if c == nil {
		s.sendError(req.RequestID, errNothingCompiled.Error())
		return
	}
	if !c.Result.Success() {
		s.sendError(req.RequestID, fmt.Sprintf("%v: %s", preview.ErrCompilationFailed, c.Result.Message()))
		return
	}

	frames, err := resolveFrames(req.Frames, c.Composition.DurationInFrames, s.handler.preview.Options().MaxFrames)
	if err != nil {
		s.sendError(req.RequestID, err.Error())
		return
	}

	s.stopRender()
	renderCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		s.stream(renderCtx, req.RequestID, c, frames)
	}()
}

// stream renders frames in order, one message per frame.
func (s *session) stream(ctx context.Context, requestID string, c *preview.Compilation, frames []int) {
	log := s.log.With(logging.RequestID(requestID), logging.CompileID(c.ID))
	log.Debug("stream started", zap.Int("frames", len(frames)))
	for i, f := range frames {
		if ctx.Err() != nil {
			s.sendCancelled(requestID, c, i)
			return
		}
		fr, err := s.handler.preview.RenderFrame(ctx, c, f)
		if err != nil {
			if ctx.Err() != nil {
				s.sendCancelled(requestID, c, i)
				return
			}
			log.Debug("stream stopped by render error", logging.Frame(f), zap.Error(err))
			msg := newMessage(TypeError, requestID)
			msg.CompileID = c.ID.String()
			msg.Frame = &f
			msg.Message = renderMessage(err)
			s.send(msg)
			return
		}

		msg := newMessage(TypeFrame, requestID)
		msg.CompileID = c.ID.String()
		msg.Frame = &fr.Index
		msg.Nodes = fr.Nodes
		s.send(msg)
	}

	msg := newMessage(TypeComplete, requestID)
	msg.CompileID = c.ID.String()
	msg.Frames = len(frames)
	msg.Console = c.Component().Console()
	s.send(msg)
}

// stopRender cancels the render in progress and waits for it to stop. It
// reports whether a render was running.
func (s *session) stopRender() bool {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

func (s *session) sendCancelled(requestID string, c *preview.Compilation, rendered int) {
	msg := newMessage(TypeCancelled, requestID)
	msg.CompileID = c.ID.String()
	msg.Frames = rendered
	s.send(msg)
}

func (s *session) send(msg Message) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		s.log.Error("encode failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Debug("write failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if m := s.handler.metrics; m != nil {
		m.RecordWSMessage("out", msg.Type)
	}
}

func (s *session) recordIncoming(typ string) {
	m := s.handler.metrics
	if m == nil {
		return
	}
	switch typ {
	case TypeCompile, TypeRender, TypeCancel, TypePing:
	default:
		typ = "unknown"
	}
	m.RecordWSMessage("in", typ)
}

func (s *session) sendError(requestID, message string) {
	msg := newMessage(TypeError, requestID)
	msg.Message = message
	s.send(msg)
}

func renderMessage(err error) string {
	if m := sandbox.Message(err); m != "" {
		return m
	}
	return err.Error()
}

// resolveFrames reads a frame selection decoded from JSON: a selection
// string, a single number or an array of numbers. At most limit frames are
// selected.
func resolveFrames(v any, duration, limit int) ([]int, error) {
	switch f := v.(type) {
	case nil:
		return preview.ParseFrames("", duration, limit)
	case string:
		return preview.ParseFrames(f, duration, limit)
	case float64:
		n, err := frameIndex(f, duration)
		if err != nil {
			return nil, err
		}
		return []int{n}, nil
	case []any:
		if len(f) > limit {
			return nil, fmt.Errorf("%w: %d, limit %d", preview.ErrTooManyFrames, len(f), limit)
		}
		out := make([]int, 0, len(f))
		for _, item := range f {
			x, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("frames must be numbers, got %T", item)
			}
			n, err := frameIndex(x, duration)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("frames must be a string, a number or an array of numbers")
}

func frameIndex(f float64, duration int) (int, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("frame %v is not an integer", f)
	}
	n := int(f)
	if n < 0 || n >= duration {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", preview.ErrFrameOutOfRange, n, duration)
	}
	return n, nil
}
