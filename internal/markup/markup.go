package markup

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// Renderer turns rendered frames into static, sanitized HTML.
type Renderer struct {
	policy *bluemonday.Policy
}

// NewRenderer creates a renderer with the default sanitizing policy.
func NewRenderer() *Renderer {
	return &Renderer{policy: Policy()}
}

// styleProperties are the inline CSS properties kept in rendered markup.
var styleProperties = []string{
	"position", "top", "right", "bottom", "left", "inset", "z-index",
	"display", "visibility", "overflow", "box-sizing",
	"width", "height", "min-width", "min-height", "max-width", "max-height",
	"margin", "margin-top", "margin-right", "margin-bottom", "margin-left",
	"padding", "padding-top", "padding-right", "padding-bottom", "padding-left",
	"flex", "flex-direction", "flex-wrap", "flex-grow", "flex-shrink", "flex-basis",
	"justify-content", "align-items", "align-self", "align-content", "gap", "order",
	"opacity", "transform", "transform-origin", "scale", "rotate", "translate",
	"color", "background", "background-color", "background-image",
	"border", "border-radius", "border-color", "border-width", "border-style",
	"box-shadow", "outline", "filter", "clip-path", "mix-blend-mode", "object-fit",
	"font-size", "font-family", "font-weight", "font-style", "line-height",
	"letter-spacing", "text-align", "text-shadow", "text-transform",
	"text-decoration", "white-space",
	"fill", "stroke", "stroke-width",
}

// unsafeStyleValues never appear in a kept declaration. Values reach the
// check lowercased.
var unsafeStyleValues = []string{"url(", "image-set(", "expression(", "javascript:", "@import", "\\", "<"}

func safeStyleValue(v string) bool {
	for _, bad := range unsafeStyleValues {
		if strings.Contains(v, bad) {
			return false
		}
	}
	return true
}

// Policy allows the markup a component can legitimately produce: standard
// content, inline styles, data attributes and the SVG subset shapes use.
// Scripts, event handlers and javascript: URLs never survive. Inline styles
// keep only styleProperties, and never a value that loads a resource.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataAttributes()
	p.AllowAttrs("id", "class", "style").Globally()
	p.AllowStyles(styleProperties...).MatchingHandler(safeStyleValue).Globally()
	p.AllowElements("div", "span", "section", "header", "footer", "main", "article", "figure", "figcaption")
	p.AllowElements("svg", "g", "path", "circle", "ellipse", "rect", "line", "polyline", "polygon")
	p.AllowAttrs("d", "fill", "stroke", "stroke-width", "viewbox", "transform",
		"cx", "cy", "r", "rx", "ry", "x", "y", "x1", "y1", "x2", "y2", "points").Globally()
	p.AllowAttrs("width", "height").Globally()
	return p
}

// Render writes nodes as an HTML fragment.
func (r *Renderer) Render(nodes []*sandbox.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, build(n)); err != nil {
			return "", fmt.Errorf("render markup: %w", err)
		}
	}
	return r.policy.Sanitize(buf.String()), nil
}

// build converts one node. Host components become a div tagged with
// data-component, shapes an svg holding their path and Img an img.
func build(n *sandbox.Node) *html.Node {
	if n.Type == sandbox.TextNode {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}

	var el *html.Node
	path, isShape := n.Props["path"].(string)
	switch {
	case !isHost(n.Type):
		el = element(n.Type)
		el.Attr = attributes(n.Props)
	case n.Type == "Img":
		el = element("img")
		el.Attr = attributes(n.Props)
	case isShape:
		el = shape(n, path)
	default:
		el = element("div")
		el.Attr = append([]html.Attribute{{Key: "data-component", Val: n.Type}}, attributes(n.Props)...)
	}

	for _, c := range n.Children {
		el.AppendChild(build(c))
	}
	return el
}

func element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// isHost reports whether typ names a component rather than an intrinsic
// element.
func isHost(typ string) bool {
	for _, r := range typ {
		return unicode.IsUpper(r)
	}
	return false
}

func shape(n *sandbox.Node, path string) *html.Node {
	w, h := number(n.Props["width"]), number(n.Props["height"])
	svg := element("svg")
	svg.Attr = []html.Attribute{
		{Key: "data-component", Val: n.Type},
		{Key: "width", Val: w},
		{Key: "height", Val: h},
		{Key: "viewBox", Val: "0 0 " + w + " " + h},
	}
	if s, ok := n.Props["style"].(map[string]any); ok {
		svg.Attr = append(svg.Attr, html.Attribute{Key: "style", Val: CSS(s)})
	}

	p := element("path")
	p.Attr = []html.Attribute{{Key: "d", Val: path}}
	for _, key := range []string{"fill", "stroke", "strokeWidth"} {
		if v, ok := n.Props[key]; ok {
			p.Attr = append(p.Attr, html.Attribute{Key: kebab(key), Val: value(v)})
		}
	}
	svg.AppendChild(p)
	return svg
}

// attributes maps props to HTML attributes in name order. Objects other
// than style, false and null are dropped.
func attributes(props map[string]any) []html.Attribute {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var attrs []html.Attribute
	for _, k := range keys {
		v := props[k]
		switch {
		case k == "style":
			if s, ok := v.(map[string]any); ok {
				attrs = append(attrs, html.Attribute{Key: "style", Val: CSS(s)})
			}
			continue
		case v == nil, v == false:
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			continue
		}

		name := k
		switch k {
		case "className":
			name = "class"
		case "htmlFor":
			name = "for"
		}
		val := value(v)
		if v == true {
			val = ""
		}
		attrs = append(attrs, html.Attribute{Key: strings.ToLower(name), Val: val})
	}
	return attrs
}

// unitless CSS properties take bare numbers.
var unitless = map[string]bool{
	"opacity":    true,
	"zIndex":     true,
	"flex":       true,
	"flexGrow":   true,
	"flexShrink": true,
	"fontWeight": true,
	"lineHeight": true,
	"order":      true,
	"scale":      true,
	"zoom":       true,
}

// CSS serializes a style object the way React does: camelCase properties
// become kebab-case and numbers get px unless the property is unitless.
func CSS(style map[string]any) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := style[k]
		if v == nil {
			continue
		}
		val := value(v)
		switch v.(type) {
		case int64, float64, int:
			if !unitless[k] && val != "0" {
				val += "px"
			}
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s: %s;", kebab(k), val)
	}
	return b.String()
}

func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func value(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprint(v)
}

func number(v any) string {
	if v == nil {
		return "0"
	}
	return value(v)
}
