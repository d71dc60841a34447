package ws

import (
	"time"

	"github.com/GriffinCanCode/animforge/internal/compiler"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// Client message types
const (
	TypeCompile = "compile"
	TypeRender  = "render"
	TypeCancel  = "cancel"
	TypePing    = "ping"
)

// Server message types
const (
	TypeSystem    = "system"
	TypeCompiled  = "compiled"
	TypeFrame     = "frame"
	TypeComplete  = "complete"
	TypeCancelled = "cancelled"
	TypePong      = "pong"
	TypeError     = "error"
)

// Request is a client message.
type Request struct {
	Type        string               `json:"type"`
	RequestID   string               `json:"request_id,omitempty"`
	Source      string               `json:"source,omitempty"`
	Composition *sandbox.Composition `json:"composition,omitempty"`
	Frames      any                  `json:"frames,omitempty"`
}

// Message is a server message. Fields are set according to Type.
type Message struct {
	Type       string             `json:"type"`
	RequestID  string             `json:"request_id,omitempty"`
	StreamID   string             `json:"stream_id,omitempty"`
	CompileID  string             `json:"compile_id,omitempty"`
	Success    *bool              `json:"success,omitempty"`
	Stage      compiler.Stage     `json:"stage,omitempty"`
	Error      *compiler.Error    `json:"error,omitempty"`
	DurationMS float64            `json:"duration_ms,omitempty"`
	Frame      *int               `json:"frame,omitempty"`
	Nodes      []*sandbox.Node    `json:"nodes,omitempty"`
	Frames     int                `json:"frames,omitempty"`
	Console    []sandbox.LogEntry `json:"console,omitempty"`
	Message    string             `json:"message,omitempty"`
	Timestamp  int64              `json:"timestamp"`
}

func newMessage(typ, requestID string) Message {
	return Message{Type: typ, RequestID: requestID, Timestamp: time.Now().Unix()}
}
