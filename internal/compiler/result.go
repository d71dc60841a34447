package compiler

import (
	"time"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// Diagnostics reported to callers.
const (
	MsgNoCode              = "No code provided"
	MsgTranspilationFailed = "Transpilation failed"
	MsgShape               = "Code must be a function that returns a React component"
	MsgUnknown             = "Unknown compilation error"
)

// Kind classifies a compilation failure.
type Kind string

const (
	KindEmptyInput  Kind = "empty_input"
	KindTransform   Kind = "transform"
	KindEmptyOutput Kind = "empty_output"
	KindShape       Kind = "shape"
	KindRuntime     Kind = "runtime"
)

// Stage is a state of the compilation pipeline.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageNormalizing  Stage = "normalizing"
	StageScaffolding  Stage = "scaffolding"
	StageTransforming Stage = "transforming"
	StageConstructing Stage = "constructing"
	StageInvoking     Stage = "invoking"
	StageSucceeded    Stage = "succeeded"
	StageFailed       Stage = "failed"
)

// Error is a compilation failure. Stage is the stage that failed.
type Error struct {
	Kind    Kind   `json:"kind"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Result holds exactly one of Component or Err.
type Result struct {
	Component *sandbox.Component
	Err       *Error

	// Body is the normalized component body, Code the transpiled source.
	// Each is set once its stage has run.
	Body     string
	Code     string
	Stage    Stage
	Duration time.Duration
}

// Success reports whether compilation produced a component.
func (r Result) Success() bool {
	return r.Component != nil && r.Err == nil
}

// Message returns the diagnostic, or "" on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}
