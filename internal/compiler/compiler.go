package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// Compiler turns generated component source into sandboxed components. It
// holds no per-call state and is safe for concurrent use.
type Compiler struct {
	table       *sandbox.Table
	transformer Transformer
	dialects    []Dialect
	config      sandbox.Config
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithTransformer replaces the esbuild transformer.
func WithTransformer(t Transformer) Option {
	return func(c *Compiler) { c.transformer = t }
}

// WithDialects sets the dialects passed to the transformer.
func WithDialects(d ...Dialect) Option {
	return func(c *Compiler) { c.dialects = d }
}

// WithSandboxConfig sets the configuration of every compilation scope.
func WithSandboxConfig(cfg sandbox.Config) Option {
	return func(c *Compiler) { c.config = cfg }
}

// New creates a compiler bound to table.
func New(table *sandbox.Table, opts ...Option) *Compiler {
	c := &Compiler{
		table:       table,
		transformer: NewESBuild(),
		dialects:    DefaultDialects,
		config:      sandbox.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the capability table components are bound to.
func (c *Compiler) Table() *sandbox.Table { return c.table }

// Compile runs the pipeline without a deadline.
func (c *Compiler) Compile(source string) Result {
	return c.CompileContext(context.Background(), source)
}

// CompileContext runs the pipeline; cancelling ctx interrupts the
// construction and probe invocation of the component.
func (c *Compiler) CompileContext(ctx context.Context, source string) (res Result) {
	start := time.Now()
	stage := StageIdle

	defer func() {
		if r := recover(); r != nil {
			kind := KindRuntime
			if stage == StageTransforming {
				kind = KindTransform
			}
			res = fail(res, kind, stage, panicMessage(r))
		}
		res.Duration = time.Since(start)
	}()

	stage = StageNormalizing
	if trimJSSpace(source) == "" {
		return fail(res, KindEmptyInput, stage, MsgNoCode)
	}
	res.Body = Normalize(source)

	stage = StageScaffolding
	scaffolded := Scaffold(res.Body)

	stage = StageTransforming
	code, err := c.transformer.Transform(scaffolded, c.dialects...)
	if err != nil {
		return fail(res, KindTransform, stage, orUnknown(err.Error()))
	}
	if strings.TrimSpace(code) == "" {
		return fail(res, KindEmptyOutput, stage, MsgTranspilationFailed)
	}
	res.Code = code

	stage = StageConstructing
	scope := sandbox.NewScope(c.config)
	args, err := scope.Bind(c.table)
	if err != nil {
		return fail(res, KindRuntime, stage, orUnknown(err.Error()))
	}
	fn, err := scope.Construct(c.table, code, ScaffoldName)
	if err != nil {
		return fail(res, KindRuntime, stage, orUnknown(sandbox.Message(err)))
	}

	stage = StageInvoking
	component, err := scope.Instantiate(ctx, fn, args)
	if errors.Is(err, sandbox.ErrNotCallable) {
		return fail(res, KindShape, stage, MsgShape)
	}
	if err != nil {
		return fail(res, KindRuntime, stage, orUnknown(sandbox.Message(err)))
	}
	out, err := component.Call(ctx, 0)
	if err != nil {
		return fail(res, KindRuntime, stage, orUnknown(sandbox.Message(err)))
	}
	if !sandbox.Renderable(out) {
		return fail(res, KindShape, stage, MsgShape)
	}

	res.Component = component
	res.Stage = StageSucceeded
	return res
}

func fail(res Result, kind Kind, stage Stage, msg string) Result {
	res.Component = nil
	res.Err = &Error{Kind: kind, Stage: stage, Message: msg}
	res.Stage = StageFailed
	return res
}

func orUnknown(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return MsgUnknown
	}
	return msg
}

func panicMessage(r any) string {
	switch x := r.(type) {
	case error:
		return orUnknown(x.Error())
	case string:
		return orUnknown(x)
	case fmt.Stringer:
		return orUnknown(x.String())
	}
	return MsgUnknown
}
