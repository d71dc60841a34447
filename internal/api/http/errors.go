package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/animforge/internal/compiler"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// statusFor maps a refused or failed request to its HTTP status.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, preview.ErrSourceTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sandbox.ErrTimeout), errors.Is(err, sandbox.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, preview.ErrFrameOutOfRange),
		errors.Is(err, preview.ErrTooManyFrames),
		errors.Is(err, preview.ErrInvalidComposition):
		return http.StatusBadRequest
	case sandbox.Interrupted(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusUnprocessableEntity
	}
}

// errorMessage is the message shown to clients for err.
func errorMessage(err error) string {
	if m := sandbox.Message(err); m != "" {
		return m
	}
	return compiler.MsgUnknown
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   errorMessage(err),
	})
}

func respondBadRequest(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request: " + err.Error(),
	})
}
