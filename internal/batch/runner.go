package batch

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sync"
	"time"

	apihttp "github.com/GriffinCanCode/animforge/internal/api/http"
	"github.com/GriffinCanCode/animforge/internal/client"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// Outcome is what checking one fixture produced.
type Outcome struct {
	CompileID string        `json:"compile_id,omitempty"`
	Success   bool          `json:"success"`
	Kind      string        `json:"kind,omitempty"`
	Stage     string        `json:"stage,omitempty"`
	Message   string        `json:"message,omitempty"`
	Frames    int           `json:"frames,omitempty"`
	Duration  time.Duration `json:"-"`
}

// Checker compiles a fixture and, when it compiles, renders the selected
// frames. A non-nil error means the check itself could not run.
type Checker interface {
	Check(ctx context.Context, f *Fixture) (Outcome, error)
}

// LocalChecker checks fixtures in-process.
type LocalChecker struct {
	Service *preview.Service
	// Frames is a selection for preview.ParseFrames; empty checks frame 0.
	Frames string
}

// Check implements Checker
func (l *LocalChecker) Check(ctx context.Context, f *Fixture) (Outcome, error) {
	comp, err := l.Service.Composition(sandbox.Composition{})
	if err != nil {
		return Outcome{}, err
	}
	frames, err := l.Service.ParseFrames(l.Frames, comp)
	if err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	r, err := l.Service.Render(ctx, f.Source, comp, frames)
	if err != nil {
		if r == nil && isRenderError(err) {
			return Outcome{Kind: "render", Message: errorText(err), Duration: time.Since(start)}, nil
		}
		return Outcome{}, err
	}

	res := r.Compilation.Result
	out := Outcome{
		CompileID: r.Compilation.ID.String(),
		Success:   res.Success(),
		Stage:     string(res.Stage),
		Frames:    len(r.Frames),
		Duration:  res.Duration,
	}
	if res.Err != nil {
		out.Kind, out.Message = string(res.Err.Kind), res.Err.Message
	}
	return out, nil
}

// RemoteChecker checks fixtures against a running server.
type RemoteChecker struct {
	Client *client.Client
	Frames string
}

// Check implements Checker
func (rc *RemoteChecker) Check(ctx context.Context, f *Fixture) (Outcome, error) {
	start := time.Now()
	r, err := rc.Client.Render(ctx, apihttp.RenderRequest{
		CompileRequest: apihttp.CompileRequest{Source: f.Source},
		Frames:         apihttp.FrameSelection{Spec: rc.Frames},
	})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnprocessableEntity || apiErr.Status == http.StatusGatewayTimeout) {
			return Outcome{Kind: "render", Message: apiErr.Message, Duration: time.Since(start)}, nil
		}
		return Outcome{}, err
	}

	out := Outcome{
		CompileID: r.ID,
		Success:   r.Success,
		Stage:     string(r.Stage),
		Frames:    len(r.Frames),
		Duration:  time.Duration(r.DurationMS * float64(time.Millisecond)),
	}
	if r.Error != nil {
		out.Kind, out.Message = string(r.Error.Kind), r.Error.Message
	}
	return out, nil
}

// Result is the check of one fixture.
type Result struct {
	Fixture *Fixture `json:"fixture"`
	Outcome Outcome  `json:"outcome"`
	// Passed is true when the outcome matches the fixture's expectation.
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// Options configures a Run.
type Options struct {
	Root     string
	Patterns []string
	Workers  int
	MaxBytes int64
}

// Run discovers fixtures and checks them with a pool of workers. Results
// keep discovery order.
func Run(ctx context.Context, checker Checker, opts Options) (*Report, error) {
	paths, err := Discover(ctx, opts.Root, opts.Patterns)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	started := time.Now()
	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = checkOne(ctx, checker, opts, paths[idx])
			}
		}()
	}

	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newReport(results, time.Since(started)), nil
}

func checkOne(ctx context.Context, checker Checker, opts Options, path string) Result {
	f, err := Load(opts.Root, path, opts.MaxBytes)
	if err != nil {
		if f == nil {
			f = &Fixture{Path: path, Rel: relPath(opts.Root, path)}
		}
		return Result{Fixture: f, Error: err.Error()}
	}

	out, err := checker.Check(ctx, f)
	if err != nil {
		return Result{Fixture: f, Error: err.Error()}
	}
	return Result{
		Fixture: f,
		Outcome: out,
		Passed:  out.Success != f.ExpectFailure,
	}
}
