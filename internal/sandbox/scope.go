package sandbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// ScriptName is the source name reported in stack traces of generated code.
const ScriptName = "dynamic-animation.js"

// Scope is one goja runtime plus the capability values bound into it.
// A Scope is not safe for concurrent use; Component serializes access.
type Scope struct {
	vm     *goja.Runtime
	config Config
	table  *Table

	bound   map[string]goja.Value
	binding map[string]bool
	hosts   map[*goja.Object]*Host
	frag    *goja.Object

	frame int

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex
}

// NewScope creates a fresh sandboxed runtime.
func NewScope(config Config) *Scope {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	s := &Scope{
		vm:      vm,
		config:  config,
		bound:   make(map[string]goja.Value),
		binding: make(map[string]bool),
		hosts:   make(map[*goja.Object]*Host),
		console: []LogEntry{},
	}
	s.setupGlobals()
	return s
}

// Runtime exposes the underlying goja runtime to binders.
func (s *Scope) Runtime() *goja.Runtime { return s.vm }

// Config returns the configuration the scope was created with.
func (s *Scope) Config() Config { return s.config }

// Composition returns the video the scope renders into.
func (s *Scope) Composition() Composition { return s.config.Composition }

// Frame returns the frame currently being rendered.
func (s *Scope) Frame() int { return s.frame }

// setupGlobals configures global objects and security
func (s *Scope) setupGlobals() {
	// Remove dangerous globals
	s.vm.Set("require", goja.Undefined())
	s.vm.Set("process", goja.Undefined())
	s.vm.Set("module", goja.Undefined())
	s.vm.Set("exports", goja.Undefined())

	if s.config.EnableConsole {
		console := s.vm.NewObject()
		for _, level := range []string{"log", "warn", "error", "info", "debug"} {
			console.Set(level, s.makeConsoleFunc(level))
		}
		s.vm.Set("console", console)
	}

	// Timers never fire
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval", "requestAnimationFrame"} {
		s.vm.Set(name, noop)
	}
}

func (s *Scope) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		s.consoleMu.Lock()
		s.console = append(s.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		s.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// Console returns a copy of the captured console output.
func (s *Scope) Console() []LogEntry {
	s.consoleMu.Lock()
	defer s.consoleMu.Unlock()
	return append([]LogEntry{}, s.console...)
}

// Bind resolves every capability of t inside the scope, in table order.
func (s *Scope) Bind(t *Table) ([]goja.Value, error) {
	s.table = t
	args := make([]goja.Value, 0, t.Len())
	for _, name := range t.Names() {
		v, err := s.Capability(name)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// Capability returns the bound value of a capability, binding it on first
// use. Binders use it to share values such as the namespace objects.
func (s *Scope) Capability(name string) (goja.Value, error) {
	if v, ok := s.bound[name]; ok {
		return v, nil
	}
	if s.table == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}
	raw, ok := s.table.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}
	if s.binding[name] {
		return nil, fmt.Errorf("%w: %s", ErrBindingCycle, name)
	}
	s.binding[name] = true
	defer delete(s.binding, name)

	var v goja.Value
	switch x := raw.(type) {
	case Binder:
		bv, err := x.Bind(s)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
		v = bv
	default:
		v = s.vm.ToValue(x)
	}
	if v == nil {
		v = goja.Undefined()
	}
	s.bound[name] = v
	return v, nil
}

// Construct compiles code into a function whose parameters are the names of
// t in order and whose body evaluates to the identifier export.
func (s *Scope) Construct(t *Table, code, export string) (fn goja.Callable, err error) {
	defer recoverPanic(&err)

	var b strings.Builder
	b.WriteString("(function(")
	b.WriteString(strings.Join(t.Names(), ", "))
	b.WriteString(") {\n")
	b.WriteString(code)
	b.WriteString("\nreturn ")
	b.WriteString(export)
	b.WriteString(";\n})")

	v, err := s.vm.RunScript(ScriptName, b.String())
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("constructed value is not a function")
	}
	return fn, nil
}

// Instantiate invokes a constructed function with bound capability values
// and wraps what it returns.
func (s *Scope) Instantiate(ctx context.Context, fn goja.Callable, args []goja.Value) (*Component, error) {
	v, err := s.call(ctx, func() (goja.Value, error) {
		return fn(goja.Undefined(), args...)
	})
	if err != nil {
		return nil, err
	}
	return newComponent(s, v)
}

// call runs f under the scope's timeout and ctx cancellation.
func (s *Scope) call(ctx context.Context, f func() (goja.Value, error)) (v goja.Value, err error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	if ctx.Done() != nil {
		done := make(chan struct{})
		exited := make(chan struct{})
		go func() {
			defer close(exited)
			select {
			case <-ctx.Done():
				s.vm.Interrupt(ctx.Err())
			case <-done:
			}
		}()
		defer func() {
			close(done)
			<-exited
			s.vm.ClearInterrupt()
		}()
	}

	defer recoverPanic(&err)
	return f()
}

func recoverPanic(err *error) {
	if r := recover(); r != nil {
		switch x := r.(type) {
		case error:
			*err = x
		default:
			*err = fmt.Errorf("%v", x)
		}
	}
}
