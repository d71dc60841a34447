package http

import (
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/animforge/internal/compiler"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// CompileRequest is the body of POST /compile.
type CompileRequest struct {
	Source      string              `json:"source"`
	Composition sandbox.Composition `json:"composition"`
	IncludeCode bool                `json:"include_code"`
}

// RenderRequest is the body of POST /render.
type RenderRequest struct {
	CompileRequest
	Frames FrameSelection `json:"frames"`
	// HTML adds the sanitized static markup of each frame.
	HTML bool `json:"html"`
}

// FrameSelection accepts either a selection string ("0-29:10", "all") or an
// explicit array of frame numbers.
type FrameSelection struct {
	Spec   string
	Frames []int
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FrameSelection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return sonic.Unmarshal(data, &f.Spec)
	case data[0] == '[':
		return sonic.Unmarshal(data, &f.Frames)
	case data[0] >= '0' && data[0] <= '9':
		var n int
		if err := sonic.Unmarshal(data, &n); err != nil {
			return err
		}
		f.Frames = []int{n}
		return nil
	}
	return fmt.Errorf("frames must be a string, a number or an array of numbers")
}

// MarshalJSON implements json.Marshaler
func (f FrameSelection) MarshalJSON() ([]byte, error) {
	switch {
	case f.Frames != nil:
		return sonic.Marshal(f.Frames)
	case f.Spec != "":
		return sonic.Marshal(f.Spec)
	}
	return []byte("null"), nil
}

// Resolve returns the selected frames for a composition of duration frames,
// refusing selections of more than limit frames.
func (f FrameSelection) Resolve(duration, limit int) ([]int, error) {
	if f.Frames != nil {
		if len(f.Frames) > limit {
			return nil, fmt.Errorf("%w: %d, limit %d", preview.ErrTooManyFrames, len(f.Frames), limit)
		}
		return f.Frames, nil
	}
	return preview.ParseFrames(f.Spec, duration, limit)
}

// CompileResponse reports one compilation.
type CompileResponse struct {
	ID          string              `json:"id"`
	Success     bool                `json:"success"`
	Stage       compiler.Stage      `json:"stage"`
	Error       *compiler.Error     `json:"error,omitempty"`
	Code        string              `json:"code,omitempty"`
	DurationMS  float64             `json:"duration_ms"`
	Composition sandbox.Composition `json:"composition"`
}

// RenderResponse reports a compilation and the frames rendered from it.
type RenderResponse struct {
	CompileResponse
	Frames  []*preview.Frame   `json:"frames"`
	Console []sandbox.LogEntry `json:"console,omitempty"`
}

// NewCompileResponse describes c. Code is included only when asked for.
func NewCompileResponse(c *preview.Compilation, includeCode bool) CompileResponse {
	res := c.Result
	out := CompileResponse{
		ID:          c.ID.String(),
		Success:     res.Success(),
		Stage:       res.Stage,
		Error:       res.Err,
		DurationMS:  float64(res.Duration.Microseconds()) / 1000,
		Composition: c.Composition,
	}
	if includeCode {
		out.Code = res.Code
	}
	return out
}

// NewRenderResponse describes r. Frames is never nil.
func NewRenderResponse(r *preview.Rendering, includeCode bool) RenderResponse {
	frames := r.Frames
	if frames == nil {
		frames = []*preview.Frame{}
	}
	return RenderResponse{
		CompileResponse: NewCompileResponse(r.Compilation, includeCode),
		Frames:          frames,
		Console:         r.Console,
	}
}
