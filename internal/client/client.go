package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	apihttp "github.com/GriffinCanCode/animforge/internal/api/http"
	"github.com/GriffinCanCode/animforge/internal/capability"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/config"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// ErrUnavailable is returned while the breaker keeps requests away from a
// failing server.
var ErrUnavailable = errors.New("preview server unavailable")

// APIError is a response with an error status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("preview server returned %d", e.Status)
	}
	return fmt.Sprintf("preview server returned %d: %s", e.Status, e.Message)
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	MinWait   time.Duration
	MaxWait   time.Duration
	RateLimit float64 // requests per second, 0 for unlimited
	UserAgent string
	Breaker   resilience.Settings
}

// DefaultConfig returns the client configuration for a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8000",
		Timeout:   10 * time.Second,
		Retries:   3,
		MinWait:   200 * time.Millisecond,
		MaxWait:   5 * time.Second,
		UserAgent: "animforge-client/1.0",
	}
}

// FromConfig overlays the remote section of the loaded configuration.
func FromConfig(remote config.RemoteConfig) Config {
	cfg := DefaultConfig()
	if remote.URL != "" {
		cfg.BaseURL = remote.URL
	}
	if remote.TimeoutMS > 0 {
		cfg.Timeout = remote.Timeout()
	}
	if remote.Retries >= 0 {
		cfg.Retries = remote.Retries
	}
	return cfg
}

// Client talks to a running preview server. Requests are retried on
// connection errors, 429 and 5xx, and a circuit breaker stops calling a
// server that keeps failing.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// New creates a client for the server at cfg.BaseURL.
func New(cfg Config) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.MinWait
	retryClient.RetryWaitMax = cfg.MaxWait
	retryClient.Logger = nil // Disable logging
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.CheckRetry = retryPolicy

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	settings := cfg.Breaker
	if settings.IsFailure == nil {
		settings.IsFailure = isServerFailure
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: resilience.New("preview-server", settings),
	}
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Compile compiles source on the server.
func (c *Client) Compile(ctx context.Context, req apihttp.CompileRequest) (*apihttp.CompileResponse, error) {
	var out apihttp.CompileResponse
	if err := c.do(ctx, http.MethodPost, "/compile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Render compiles source on the server and renders the selected frames.
func (c *Client) Render(ctx context.Context, req apihttp.RenderRequest) (*apihttp.RenderResponse, error) {
	var out apihttp.RenderResponse
	if err := c.do(ctx, http.MethodPost, "/render", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Capabilities describes the server's capability table.
type Capabilities struct {
	Version      string            `json:"version"`
	Capabilities []capability.Info `json:"capabilities"`
}

// Capabilities fetches the server's capability table.
func (c *Client) Capabilities(ctx context.Context) (*Capabilities, error) {
	var out Capabilities
	if err := c.do(ctx, http.MethodGet, "/capabilities", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckVersion fails unless the server binds the same capability table as
// this build.
func (c *Client) CheckVersion(ctx context.Context, table *sandbox.Table) error {
	caps, err := c.Capabilities(ctx)
	if err != nil {
		return err
	}
	if caps.Version != table.Version() || len(caps.Capabilities) != table.Len() {
		return fmt.Errorf("capability table mismatch: server has version %s with %d entries, client %s with %d",
			caps.Version, len(caps.Capabilities), table.Version(), table.Len())
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit error: %w", err)
	}

	var errBody struct {
		Error string `json:"error"`
	}
	_, err := resilience.Do(c.breaker, func() (*resty.Response, error) {
		r := c.resty.R().
			SetContext(ctx).
			SetResult(out).
			SetError(&errBody)
		tracing.Inject(ctx, r.Header)
		if body != nil {
			r.SetBody(body)
		}

		resp, err := r.Execute(method, path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return resp, &APIError{Status: resp.StatusCode(), Message: errBody.Error}
		}
		return resp, nil
	})

	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// retryPolicy is the default policy except that 504 is final: the server
// sends it when a component outruns the render timeout, and a retry would
// time out again.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusGatewayTimeout {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// isServerFailure counts transport errors and 5xx responses against the
// breaker. Client errors and component timeouts are not the server's fault.
func isServerFailure(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status != http.StatusGatewayTimeout
	}
	return !errors.Is(err, context.Canceled)
}
