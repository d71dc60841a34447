package capability

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// Hooks have preview semantics: a component is a pure function of the frame,
// so state never changes and effects never run.

func bindReact(s *sandbox.Scope) (goja.Value, error) {
	react := s.Runtime().NewObject()
	if err := react.Set("createElement", s.CreateElement); err != nil {
		return nil, err
	}
	if err := react.Set("Fragment", s.Fragment()); err != nil {
		return nil, err
	}
	for _, hook := range []string{"useState", "useEffect", "useMemo", "useRef", "useCallback"} {
		v, err := s.Capability(hook)
		if err != nil {
			return nil, err
		}
		if err := react.Set(hook, v); err != nil {
			return nil, err
		}
	}
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	if err := react.Set("useLayoutEffect", noop); err != nil {
		return nil, err
	}
	return react, nil
}

func bindUseState(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	setter := vm.ToValue(func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	return vm.ToValue(func(c goja.FunctionCall) goja.Value {
		initial := c.Argument(0)
		if _, ok := goja.AssertFunction(initial); ok {
			initial = call(s, initial)
		}
		return vm.NewArray(initial, setter)
	}), nil
}

func bindUseEffect(s *sandbox.Scope) (goja.Value, error) {
	return s.Runtime().ToValue(func(goja.FunctionCall) goja.Value { return goja.Undefined() }), nil
}

func bindUseMemo(s *sandbox.Scope) (goja.Value, error) {
	return s.Runtime().ToValue(func(c goja.FunctionCall) goja.Value {
		return call(s, c.Argument(0))
	}), nil
}

func bindUseRef(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	return vm.ToValue(func(c goja.FunctionCall) goja.Value {
		ref := vm.NewObject()
		_ = ref.Set("current", c.Argument(0))
		return ref
	}), nil
}

func bindUseCallback(s *sandbox.Scope) (goja.Value, error) {
	return s.Runtime().ToValue(func(c goja.FunctionCall) goja.Value {
		return c.Argument(0)
	}), nil
}
