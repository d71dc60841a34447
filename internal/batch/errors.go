package batch

import (
	"errors"

	"github.com/GriffinCanCode/animforge/internal/compiler"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// isRenderError reports whether err came from the component while rendering
// a frame rather than from the service refusing the work.
func isRenderError(err error) bool {
	switch {
	case errors.Is(err, preview.ErrSourceTooLarge),
		errors.Is(err, preview.ErrTooManyFrames),
		errors.Is(err, preview.ErrFrameOutOfRange),
		errors.Is(err, preview.ErrInvalidComposition),
		errors.Is(err, sandbox.ErrPoolClosed),
		errors.Is(err, sandbox.ErrTimeout):
		return false
	}
	return true
}

func errorText(err error) string {
	if m := sandbox.Message(err); m != "" {
		return m
	}
	return compiler.MsgUnknown
}
