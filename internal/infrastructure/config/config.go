package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// ErrUnknownFormat is returned by LoadFile for unsupported extensions.
var ErrUnknownFormat = errors.New("unknown config file format")

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Logging     LogConfig         `yaml:"logging" toml:"logging"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" toml:"rate_limit"`
	Sandbox     SandboxConfig     `yaml:"sandbox" toml:"sandbox"`
	Composition CompositionConfig `yaml:"composition" toml:"composition"`
	Remote      RemoteConfig      `yaml:"remote" toml:"remote"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `envconfig:"PORT" yaml:"port" toml:"port"`
	Host         string `envconfig:"HOST" yaml:"host" toml:"host"`
	Compression  bool   `envconfig:"COMPRESSION" yaml:"compression" toml:"compression"`
	MaxBodyBytes int64  `envconfig:"MAX_BODY_BYTES" yaml:"max_body_bytes" toml:"max_body_bytes"`

	// CORSOrigins lists the browser origins allowed to call the API; "*"
	// allows any.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" yaml:"cors_origins" toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// SandboxConfig bounds the work a single compilation or render may do.
type SandboxConfig struct {
	MaxConcurrent    int  `envconfig:"SANDBOX_MAX_CONCURRENT" yaml:"max_concurrent" toml:"max_concurrent"`
	AcquireTimeoutMS int  `envconfig:"SANDBOX_ACQUIRE_TIMEOUT_MS" yaml:"acquire_timeout_ms" toml:"acquire_timeout_ms"`
	RenderTimeoutMS  int  `envconfig:"SANDBOX_RENDER_TIMEOUT_MS" yaml:"render_timeout_ms" toml:"render_timeout_ms"`
	MaxSourceBytes   int  `envconfig:"SANDBOX_MAX_SOURCE_BYTES" yaml:"max_source_bytes" toml:"max_source_bytes"`
	MaxRenderDepth   int  `envconfig:"SANDBOX_MAX_RENDER_DEPTH" yaml:"max_render_depth" toml:"max_render_depth"`
	MaxFrames        int  `envconfig:"SANDBOX_MAX_FRAMES" yaml:"max_frames" toml:"max_frames"`
	Console          bool `envconfig:"SANDBOX_CONSOLE" yaml:"console" toml:"console"`
}

// AcquireTimeout is how long a request waits for a free sandbox slot.
func (s SandboxConfig) AcquireTimeout() time.Duration {
	return time.Duration(s.AcquireTimeoutMS) * time.Millisecond
}

// RenderTimeout caps a single compilation or frame render.
func (s SandboxConfig) RenderTimeout() time.Duration {
	return time.Duration(s.RenderTimeoutMS) * time.Millisecond
}

// CompositionConfig is the video configuration components see.
type CompositionConfig struct {
	Width            int     `envconfig:"COMPOSITION_WIDTH" yaml:"width" toml:"width"`
	Height           int     `envconfig:"COMPOSITION_HEIGHT" yaml:"height" toml:"height"`
	FPS              float64 `envconfig:"COMPOSITION_FPS" yaml:"fps" toml:"fps"`
	DurationInFrames int     `envconfig:"COMPOSITION_DURATION" yaml:"duration_in_frames" toml:"duration_in_frames"`

	// MaxDurationInFrames caps the duration a request may ask for.
	MaxDurationInFrames int `envconfig:"COMPOSITION_MAX_DURATION" yaml:"max_duration_in_frames" toml:"max_duration_in_frames"`
}

// RemoteConfig points the CLI at a running server.
type RemoteConfig struct {
	URL       string `envconfig:"ANIMFORGE_URL" yaml:"url" toml:"url"`
	TimeoutMS int    `envconfig:"ANIMFORGE_TIMEOUT_MS" yaml:"timeout_ms" toml:"timeout_ms"`
	Retries   int    `envconfig:"ANIMFORGE_RETRIES" yaml:"retries" toml:"retries"`
}

// Timeout is the per-request timeout of the remote client.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Load loads configuration from environment variables over the defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML or TOML file over the defaults, then applies
// environment variables on top.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return errors.New("config: server port is required")
	case c.Sandbox.MaxConcurrent <= 0:
		return fmt.Errorf("config: sandbox max_concurrent must be positive, got %d", c.Sandbox.MaxConcurrent)
	case c.Composition.Width <= 0 || c.Composition.Height <= 0:
		return fmt.Errorf("config: composition size must be positive, got %dx%d", c.Composition.Width, c.Composition.Height)
	case c.Composition.FPS <= 0:
		return fmt.Errorf("config: composition fps must be positive, got %v", c.Composition.FPS)
	case c.Composition.DurationInFrames <= 0:
		return fmt.Errorf("config: composition duration must be positive, got %d", c.Composition.DurationInFrames)
	case c.Composition.MaxDurationInFrames < c.Composition.DurationInFrames:
		return fmt.Errorf("config: composition max duration %d is below the default duration %d",
			c.Composition.MaxDurationInFrames, c.Composition.DurationInFrames)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8000",
			Host:         "0.0.0.0",
			Compression:  true,
			MaxBodyBytes: 1 << 20,
			CORSOrigins:  []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Sandbox: SandboxConfig{
			MaxConcurrent:    4,
			AcquireTimeoutMS: 5000,
			RenderTimeoutMS:  2000,
			MaxSourceBytes:   256 << 10,
			MaxRenderDepth:   256,
			MaxFrames:        300,
			Console:          true,
		},
		Composition: CompositionConfig{
			Width:               1920,
			Height:              1080,
			FPS:                 30,
			DurationInFrames:    150,
			MaxDurationInFrames: 108000,
		},
		Remote: RemoteConfig{
			URL:       "http://localhost:8000",
			TimeoutMS: 10000,
			Retries:   3,
		},
	}
}
