package sandbox

import (
	"time"
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Per call execution limit, 0 disables it
	MaxCallStackSize int           // goja call stack depth
	MaxRenderDepth   int           // Nested function components per render
	EnableConsole    bool          // Capture console.log/warn/error/info
	Composition      Composition   // Values reported by useVideoConfig
}

// Composition describes the video the component renders into.
type Composition struct {
	ID               string  `json:"id"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	FPS              float64 `json:"fps"`
	DurationInFrames int     `json:"durationInFrames"`
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// DefaultComposition returns a 1080p, 30fps, five second composition.
func DefaultComposition() Composition {
	return Composition{
		ID:               "DynamicAnimation",
		Width:            1920,
		Height:           1080,
		FPS:              30,
		DurationInFrames: 150,
	}
}

// DefaultConfig returns the configuration used by the compiler: no timeout,
// console capture on.
func DefaultConfig() Config {
	return Config{
		Timeout:          0,
		MaxCallStackSize: 1024,
		MaxRenderDepth:   256,
		EnableConsole:    true,
		Composition:      DefaultComposition(),
	}
}
