package sandbox

import (
	"github.com/dop251/goja"
)

// Element is the value produced by React.createElement inside a scope.
type Element struct {
	Type     goja.Value   `json:"type"`
	Props    *goja.Object `json:"props"`
	Key      string       `json:"key"`
	Children []goja.Value `json:"-"`
}

// RenderContext is passed to host callbacks while a tree is rendered.
type RenderContext struct {
	Frame       int
	Composition Composition
}

// Slot is a child element offered to a Host's Arrange callback.
type Slot struct {
	Host  string
	Props map[string]any
}

// Arrangement places slot Index at Frame, with extra props for its node.
type Arrangement struct {
	Index int
	Frame int
	Props map[string]any
}

// Host is a built-in component implemented in Go. Only one of Timeline and
// Arrange is consulted; Decorate runs first when set.
type Host struct {
	Name string

	// Transparent hosts render their children in place, like Fragment.
	Transparent bool

	// Decorate rewrites the props of the node.
	Decorate func(rc RenderContext, props map[string]any) (map[string]any, error)

	// Timeline maps the parent frame to the frame seen by the children.
	// Returning visible=false drops the subtree.
	Timeline func(rc RenderContext, props map[string]any) (local int, visible bool)

	// Arrange picks which children render and at which frame.
	Arrange func(rc RenderContext, slots []Slot) ([]Arrangement, error)

	// Members become properties of the host object, e.g. TransitionSeries.Sequence.
	Members []*Host
}

// RegisterHost creates the JS handle for h. Calling the handle directly
// returns an element of that host.
func (s *Scope) RegisterHost(h *Host) *goja.Object {
	var obj *goja.Object
	obj = s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return s.newElement(obj, call.Argument(0), "", nil)
	}).ToObject(s.vm)
	obj.Set("displayName", h.Name)
	for _, m := range h.Members {
		obj.Set(memberName(h.Name, m.Name), s.RegisterHost(m))
	}
	s.hosts[obj] = h
	return obj
}

func memberName(parent, name string) string {
	if len(name) > len(parent)+1 && name[:len(parent)] == parent && name[len(parent)] == '.' {
		return name[len(parent)+1:]
	}
	return name
}

// LookupHost reports the host behind a JS value.
func (s *Scope) LookupHost(v goja.Value) (*Host, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	h, ok := s.hosts[obj]
	return h, ok
}

// Fragment returns the scope's fragment host.
func (s *Scope) Fragment() *goja.Object {
	if s.frag == nil {
		s.frag = s.RegisterHost(&Host{Name: "Fragment", Transparent: true})
	}
	return s.frag
}

// CreateElement implements React.createElement(type, props, ...children).
func (s *Scope) CreateElement(call goja.FunctionCall) goja.Value {
	typ := call.Argument(0)
	if _, isObj := typ.(*goja.Object); !isObj {
		if _, isString := typ.Export().(string); !isString {
			panic(s.vm.NewTypeError("React.createElement: type is invalid, expected a string or a component but got: %s", typ.String()))
		}
	}

	var key string
	if props := call.Argument(1); !goja.IsUndefined(props) && !goja.IsNull(props) {
		if k := props.ToObject(s.vm).Get("key"); k != nil && !goja.IsUndefined(k) && !goja.IsNull(k) {
			key = k.String()
		}
	}
	var children []goja.Value
	if len(call.Arguments) > 2 {
		children = append(children, call.Arguments[2:]...)
	}
	return s.newElement(typ, call.Argument(1), key, children)
}

func (s *Scope) newElement(typ, props goja.Value, key string, children []goja.Value) goja.Value {
	p := s.vm.NewObject()
	if props != nil && !goja.IsUndefined(props) && !goja.IsNull(props) {
		src := props.ToObject(s.vm)
		for _, k := range src.Keys() {
			if k == "key" || k == "ref" {
				continue
			}
			p.Set(k, src.Get(k))
		}
	}
	switch len(children) {
	case 0:
	case 1:
		p.Set("children", children[0])
	default:
		p.Set("children", s.vm.NewArray(toInterfaces(children)...))
	}
	return s.vm.ToValue(&Element{Type: typ, Props: p, Key: key, Children: children})
}

func toInterfaces(vs []goja.Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// AsElement unwraps an element value.
func AsElement(v goja.Value) (*Element, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	el, ok := obj.Export().(*Element)
	return el, ok
}
