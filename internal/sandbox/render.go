package sandbox

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"

	"github.com/dop251/goja"
)

var ErrRenderDepth = errors.New("maximum component depth exceeded")

type renderer struct {
	scope    *Scope
	maxDepth int
}

func (r *renderer) renderComponent(fnVal goja.Value, props *goja.Object, frame, depth int) ([]*Node, error) {
	if r.maxDepth > 0 && depth > r.maxDepth {
		return nil, ErrRenderDepth
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, ErrNotCallable
	}

	r.scope.frame = frame
	out, err := fn(goja.Undefined(), props)
	if err != nil {
		return nil, err
	}
	return r.render(out, frame, depth+1)
}

func (r *renderer) render(v goja.Value, frame, depth int) ([]*Node, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	if obj, ok := v.(*goja.Object); ok {
		if el, ok := AsElement(obj); ok {
			return r.renderElement(el, frame, depth)
		}
		if obj.ClassName() == "Array" {
			var nodes []*Node
			for _, item := range arrayItems(obj) {
				n, err := r.render(item, frame, depth)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, n...)
			}
			return nodes, nil
		}
		return nil, fmt.Errorf("objects are not valid as a child (found: %s)", obj.ClassName())
	}

	switch v.Export().(type) {
	case bool:
		return nil, nil
	case string, int64, float64:
		return []*Node{{Type: TextNode, Text: v.String()}}, nil
	}
	return nil, fmt.Errorf("cannot render value %s", v.String())
}

func (r *renderer) renderElement(el *Element, frame, depth int) ([]*Node, error) {
	children := el.Props.Get("children")

	if _, isObj := el.Type.(*goja.Object); !isObj {
		kids, err := r.render(children, frame, depth)
		if err != nil {
			return nil, err
		}
		return []*Node{{
			Type:     el.Type.String(),
			Key:      el.Key,
			Props:    plainProps(exportProps(el.Props)),
			Children: kids,
		}}, nil
	}

	if h, ok := r.scope.LookupHost(el.Type); ok {
		return r.renderHost(h, el, children, frame, depth)
	}
	if _, ok := goja.AssertFunction(el.Type); ok {
		return r.renderComponent(el.Type, el.Props, frame, depth)
	}
	return nil, fmt.Errorf("element type is invalid: %s", el.Type.String())
}

func (r *renderer) renderHost(h *Host, el *Element, children goja.Value, frame, depth int) ([]*Node, error) {
	if h.Transparent {
		return r.render(children, frame, depth)
	}

	rc := RenderContext{Frame: frame, Composition: r.scope.config.Composition}
	props := exportProps(el.Props)
	if h.Decorate != nil {
		var err error
		if props, err = h.Decorate(rc, props); err != nil {
			return nil, fmt.Errorf("%s: %w", h.Name, err)
		}
	}
	node := &Node{Type: h.Name, Key: el.Key, Props: plainProps(props)}

	switch {
	case h.Arrange != nil:
		items, err := r.elements(h, children)
		if err != nil {
			return nil, err
		}
		slots := make([]Slot, len(items))
		for i, it := range items {
			slots[i].Props = exportProps(it.Props)
			if ch, ok := r.scope.LookupHost(it.Type); ok {
				slots[i].Host = ch.Name
			}
		}
		placed, err := h.Arrange(rc, slots)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", h.Name, err)
		}
		for _, a := range placed {
			item := items[a.Index]
			kids, err := r.render(item.Props.Get("children"), a.Frame, depth)
			if err != nil {
				return nil, err
			}
			merged := make(map[string]any, len(slots[a.Index].Props)+len(a.Props))
			maps.Copy(merged, slots[a.Index].Props)
			maps.Copy(merged, a.Props)
			node.Children = append(node.Children, &Node{
				Type:     slots[a.Index].Host,
				Key:      item.Key,
				Props:    plainProps(merged),
				Children: kids,
			})
		}
	case h.Timeline != nil:
		local, visible := h.Timeline(rc, props)
		if !visible {
			return nil, nil
		}
		kids, err := r.render(children, local, depth)
		if err != nil {
			return nil, err
		}
		node.Children = kids
	default:
		kids, err := r.render(children, frame, depth)
		if err != nil {
			return nil, err
		}
		node.Children = kids
	}
	return []*Node{node}, nil
}

// elements flattens the children of an arranging host into elements.
func (r *renderer) elements(h *Host, v goja.Value) ([]*Element, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	if _, isBool := v.Export().(bool); isBool {
		return nil, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("%s accepts only elements as children", h.Name)
	}
	if el, ok := AsElement(obj); ok {
		if fh, ok := r.scope.LookupHost(el.Type); ok && fh.Transparent {
			return r.elements(h, el.Props.Get("children"))
		}
		return []*Element{el}, nil
	}
	if obj.ClassName() != "Array" {
		return nil, fmt.Errorf("%s accepts only elements as children", h.Name)
	}
	var out []*Element
	for _, item := range arrayItems(obj) {
		els, err := r.elements(h, item)
		if err != nil {
			return nil, err
		}
		out = append(out, els...)
	}
	return out, nil
}

// exportProps exports every non-function prop except children.
func exportProps(obj *goja.Object) map[string]any {
	out := make(map[string]any)
	if obj == nil {
		return out
	}
	for _, k := range obj.Keys() {
		if k == "children" {
			continue
		}
		v := obj.Get(k)
		if v == nil || goja.IsUndefined(v) {
			continue
		}
		if _, isFn := goja.AssertFunction(v); isFn {
			continue
		}
		out[k] = v.Export()
	}
	return out
}

// plainProps keeps the props that survive JSON encoding.
func plainProps(props map[string]any) map[string]any {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if p, ok := plain(v); ok {
			out[k] = p
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func plain(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case *Element, goja.Value:
		return nil, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		return x, true
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			if p, ok := plain(vv); ok {
				out[k] = p
			}
		}
		return out, true
	case []any:
		out := make([]any, 0, len(x))
		for _, vv := range x {
			if p, ok := plain(vv); ok {
				out = append(out, p)
			}
		}
		return out, true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, false
	}
	return v, true
}
