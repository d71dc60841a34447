package compiler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

func testTable(squares *atomic.Int64) *sandbox.Table {
	return sandbox.MustTable("test",
		sandbox.Capability{Name: "React", Value: sandbox.BindFunc(func(s *sandbox.Scope) (goja.Value, error) {
			react := s.Runtime().NewObject()
			if err := react.Set("createElement", s.CreateElement); err != nil {
				return nil, err
			}
			if err := react.Set("Fragment", s.Fragment()); err != nil {
				return nil, err
			}
			return react, nil
		})},
		sandbox.Capability{Name: "square", Value: func(n int) int {
			squares.Add(int64(n))
			return n * n
		}},
	)
}

func newTestCompiler(opts ...Option) *Compiler {
	return New(testTable(new(atomic.Int64)), opts...)
}

func TestCompileEmptyInput(t *testing.T) {
	transforms := 0
	c := newTestCompiler(WithTransformer(TransformerFunc(func(src string, _ ...Dialect) (string, error) {
		transforms++
		return src, nil
	})))

	for _, source := range []string{"", "   ", "\n\t"} {
		res := c.Compile(source)
		require.False(t, res.Success())
		assert.Nil(t, res.Component)
		assert.Equal(t, MsgNoCode, res.Message())
		assert.Equal(t, KindEmptyInput, res.Err.Kind)
		assert.Equal(t, StageNormalizing, res.Err.Stage)
		assert.Equal(t, StageFailed, res.Stage)
	}
	assert.Zero(t, transforms)
}

func TestCompileCanonicalScenario(t *testing.T) {
	res := newTestCompiler().Compile("import { useState } from \"react\";\nexport const MyAnim = () => {\n  return null;\n};")
	require.True(t, res.Success(), res.Message())
	assert.Nil(t, res.Err)
	assert.Equal(t, "return null;", res.Body)
	assert.Equal(t, StageSucceeded, res.Stage)

	out, err := res.Component.Invoke(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestCompileShapeError(t *testing.T) {
	res := newTestCompiler().Compile("export const X = () => { return 42; };")
	require.False(t, res.Success())
	assert.Nil(t, res.Component)
	assert.Equal(t, KindShape, res.Err.Kind)
	assert.Equal(t, StageInvoking, res.Err.Stage)
	assert.Equal(t, MsgShape, res.Message())
	assert.NotEmpty(t, res.Code, "the body was transpiled and constructed")
}

func TestCompileNotCallable(t *testing.T) {
	c := newTestCompiler(WithTransformer(TransformerFunc(func(string, ...Dialect) (string, error) {
		return "var DynamicAnimation = 5;", nil
	})))
	res := c.Compile("return null;")
	require.False(t, res.Success())
	assert.Equal(t, KindShape, res.Err.Kind)
	assert.Equal(t, MsgShape, res.Message())
}

func TestCompileTransformErrors(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		transformer Transformer
		kind        Kind
		message     string
	}{
		{
			name:   "unbalanced braces",
			source: "export const X = () => { if (true) { return null; };",
			kind:   KindTransform,
		},
		{
			name:   "error without message",
			source: "return null;",
			transformer: TransformerFunc(func(string, ...Dialect) (string, error) {
				return "", errors.New("")
			}),
			kind:    KindTransform,
			message: MsgUnknown,
		},
		{
			name:   "empty output",
			source: "return null;",
			transformer: TransformerFunc(func(string, ...Dialect) (string, error) {
				return "  ", nil
			}),
			kind:    KindEmptyOutput,
			message: MsgTranspilationFailed,
		},
		{
			name:   "panicking transformer",
			source: "return null;",
			transformer: TransformerFunc(func(string, ...Dialect) (string, error) {
				panic("transformer exploded")
			}),
			kind:    KindTransform,
			message: "transformer exploded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.transformer != nil {
				opts = append(opts, WithTransformer(tt.transformer))
			}
			res := newTestCompiler(opts...).Compile(tt.source)
			require.False(t, res.Success())
			assert.Nil(t, res.Component)
			assert.Equal(t, tt.kind, res.Err.Kind)
			assert.Equal(t, StageTransforming, res.Err.Stage)
			assert.NotEmpty(t, res.Message())
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message())
			}
		})
	}
}

func TestCompileRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		stage   Stage
		message string
	}{
		{"undeclared name", "return missingThing;", StageInvoking, "missingThing is not defined"},
		{"thrown error", `throw new Error("bad frame");`, StageInvoking, "bad frame"},
		{"thrown number", "throw 5;", StageInvoking, MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestCompiler().Compile(tt.source)
			require.False(t, res.Success())
			assert.Equal(t, tt.stage, res.Err.Stage)
			assert.Equal(t, KindRuntime, res.Err.Kind)
			assert.Contains(t, res.Message(), tt.message)
		})
	}
}

func TestCompileBindsCapabilitiesByPosition(t *testing.T) {
	squares := new(atomic.Int64)
	c := New(testTable(squares))

	res := c.Compile("export const X = () => { const n = square(4); return n === 16 ? null : 'wrong'; };")
	require.True(t, res.Success(), res.Message())
	assert.EqualValues(t, 4, squares.Load())
}

func TestCompileDoesNotLeakCapabilitiesToGlobals(t *testing.T) {
	res := newTestCompiler().Compile(`return typeof globalThis.square === "undefined" && typeof require === "undefined" ? null : 42;`)
	assert.True(t, res.Success(), res.Message())
}

func TestCompileBuiltinsResolveThroughGlobals(t *testing.T) {
	res := newTestCompiler().Compile(`return Math.max(1, 2) === 2 ? "ok" : 42;`)
	assert.True(t, res.Success(), res.Message())
}

func TestCompileJSX(t *testing.T) {
	res := newTestCompiler().Compile(`export const Scene = () => {
  const label: string = "hi";
  return <div id="root">{label}</div>;
};`)
	require.True(t, res.Success(), res.Message())

	nodes, err := res.Component.Render(context.Background(), 0)
	require.NoError(t, err)
	root := sandbox.First(nodes, "#root")
	require.NotNil(t, root)
	assert.Equal(t, "hi", root.TextContent())
}

func TestCompileContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := newTestCompiler().CompileContext(ctx, "while (true) {}")
	require.False(t, res.Success())
	assert.Equal(t, KindRuntime, res.Err.Kind)
	assert.Contains(t, res.Message(), "execution interrupted")
}

func TestCompileIsIndependentPerCall(t *testing.T) {
	c := newTestCompiler()
	first := c.Compile("globalThis.leaked = 1; return null;")
	require.True(t, first.Success(), first.Message())

	second := c.Compile(`return typeof leaked === "undefined" ? null : 42;`)
	assert.True(t, second.Success(), second.Message())
}

func TestCompileConcurrent(t *testing.T) {
	c := newTestCompiler()
	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Compile("export const X = () => { return <span>{square(2)}</span>; };")
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.True(t, res.Success(), res.Message())
	}
}
