package capability

import (
	"math"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/animforge/internal/primitives/motion"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// options reads an optional options object argument.
type options struct {
	vm  *goja.Runtime
	obj *goja.Object
}

func optionsOf(s *sandbox.Scope, v goja.Value) options {
	o := options{vm: s.Runtime()}
	if v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		o.obj = v.ToObject(o.vm)
	}
	return o
}

func (o options) get(key string) goja.Value {
	if o.obj == nil {
		return nil
	}
	v := o.obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v
}

func (o options) has(key string) bool { return o.get(key) != nil }

func (o options) float(key string, def float64) float64 {
	if v := o.get(key); v != nil {
		return v.ToFloat()
	}
	return def
}

func (o options) integer(key string, def int) int {
	if v := o.get(key); v != nil {
		return int(v.ToInteger())
	}
	return def
}

func (o options) str(key, def string) string {
	if v := o.get(key); v != nil {
		return v.String()
	}
	return def
}

func (o options) boolean(key string, def bool) bool {
	if v := o.get(key); v != nil {
		return v.ToBoolean()
	}
	return def
}

func (o options) object(key string) options {
	return options{vm: o.vm, obj: asObject(o.vm, o.get(key))}
}

func asObject(vm *goja.Runtime, v goja.Value) *goja.Object {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.ToObject(vm)
}

// throw raises err as a JavaScript TypeError.
func throw(s *sandbox.Scope, err error) {
	panic(s.Runtime().NewTypeError("%s", err.Error()))
}

// call invokes a JavaScript function and rethrows its exception.
func call(s *sandbox.Scope, fn goja.Value, args ...goja.Value) goja.Value {
	f, ok := goja.AssertFunction(fn)
	if !ok {
		panic(s.Runtime().NewTypeError("%s is not a function", fn.String()))
	}
	v, err := f(goja.Undefined(), args...)
	if err != nil {
		panic(err)
	}
	return v
}

// easingOf converts a JavaScript easing function into a Go one.
func easingOf(s *sandbox.Scope, v goja.Value) motion.EasingFunc {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if _, ok := goja.AssertFunction(v); !ok {
		panic(s.Runtime().NewTypeError("easing must be a function"))
	}
	return func(t float64) float64 {
		return call(s, v, s.Runtime().ToValue(t)).ToFloat()
	}
}

func floats(s *sandbox.Scope, v goja.Value, name string) []float64 {
	var out []float64
	if err := s.Runtime().ExportTo(v, &out); err != nil {
		panic(s.Runtime().NewTypeError("%s must be an array of numbers", name))
	}
	return out
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	}
	return 0, false
}

func propFloat(props map[string]any, key string, def float64) float64 {
	if f, ok := number(props[key]); ok {
		return f
	}
	return def
}

func propString(props map[string]any, key, def string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return def
}

func propBool(props map[string]any, key string, def bool) bool {
	if b, ok := props[key].(bool); ok {
		return b
	}
	return def
}
