package sandbox

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/dop251/goja"
)

var ErrNotCallable = errors.New("artifact is not callable")

// Component is a constructed animation component bound to its scope.
type Component struct {
	scope *Scope
	value goja.Value
	fn    goja.Callable
	mu    sync.Mutex
}

func newComponent(s *Scope, v goja.Value) (*Component, error) {
	if v == nil {
		return nil, ErrNotCallable
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, ErrNotCallable
	}
	return &Component{scope: s, value: v, fn: fn}, nil
}

// Scope returns the scope the component was built in.
func (c *Component) Scope() *Scope { return c.scope }

// Call invokes the component with no props at frame and returns the raw
// result.
func (c *Component) Call(ctx context.Context, frame int) (goja.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.scope.frame
	c.scope.frame = frame
	defer func() { c.scope.frame = prev }()

	return c.scope.call(ctx, func() (goja.Value, error) {
		return c.fn(goja.Undefined())
	})
}

// Invoke calls the component at frame 0 and exports the result: nil for
// null or undefined, *Element for elements.
func (c *Component) Invoke(ctx context.Context) (any, error) {
	v, err := c.Call(ctx, 0)
	if err != nil {
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}

// Render resolves the component's output at frame into plain nodes.
func (c *Component) Render(ctx context.Context, frame int) ([]*Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var nodes []*Node
	_, err := c.scope.call(ctx, func() (goja.Value, error) {
		r := &renderer{scope: c.scope, maxDepth: c.scope.config.MaxRenderDepth}
		var err error
		nodes, err = r.renderComponent(c.value, c.scope.vm.NewObject(), frame, 0)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// Console returns console output captured in the component's scope.
func (c *Component) Console() []LogEntry {
	return c.scope.Console()
}

// Renderable reports whether v is something a component may return:
// null, undefined, a boolean, a string, an element, or an array of those.
// Numbers are accepted inside arrays only.
func Renderable(v goja.Value) bool {
	return renderable(v, false)
}

func renderable(v goja.Value, nested bool) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return true
	}
	if obj, ok := v.(*goja.Object); ok {
		if _, ok := AsElement(obj); ok {
			return true
		}
		if obj.ClassName() != "Array" {
			return false
		}
		for _, item := range arrayItems(obj) {
			if !renderable(item, true) {
				return false
			}
		}
		return true
	}
	switch v.Export().(type) {
	case string, bool:
		return true
	case int64, float64:
		return nested
	}
	return false
}

func arrayItems(obj *goja.Object) []goja.Value {
	n := int(obj.Get("length").ToInteger())
	items := make([]goja.Value, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, obj.Get(strconv.Itoa(i)))
	}
	return items
}
