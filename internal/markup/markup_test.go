package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

func text(s string) *sandbox.Node {
	return &sandbox.Node{Type: sandbox.TextNode, Text: s}
}

func sampleFrame() []*sandbox.Node {
	return []*sandbox.Node{{
		Type: "AbsoluteFill",
		Props: map[string]any{
			"style": map[string]any{"position": "absolute", "top": int64(0), "opacity": 0.5, "fontSize": int64(24)},
		},
		Children: []*sandbox.Node{
			{
				Type:     "h1",
				Props:    map[string]any{"className": "title", "data-step": "1", "hidden": false, "meta": map[string]any{"a": 1}},
				Children: []*sandbox.Node{text("Hi <b>")},
			},
			{
				Type:  "Circle",
				Props: map[string]any{"path": "M 0 0 Z", "width": 20.0, "height": 20.0, "fill": "red"},
			},
			{Type: "script", Children: []*sandbox.Node{text("alert(1)")}},
			{Type: "a", Props: map[string]any{"href": "javascript:alert(1)"}, Children: []*sandbox.Node{text("link")}},
			{Type: "Img", Props: map[string]any{"src": "https://example.com/a.png"}},
		},
	}}
}

func TestRender(t *testing.T) {
	out, err := NewRenderer().Render(sampleFrame())
	require.NoError(t, err)

	assert.Contains(t, out, `<div data-component="AbsoluteFill" style="font-size: 24px; opacity: 0.5; position: absolute; top: 0">`)
	assert.Contains(t, out, `<h1 class="title" data-step="1">Hi &lt;b&gt;</h1>`)
	assert.Contains(t, out, `<path d="M 0 0 Z" fill="red">`)
	assert.Contains(t, out, `<img src="https://example.com/a.png"`)
	assert.NotContains(t, out, "meta")
	assert.NotContains(t, out, "hidden")
}

func TestRenderSanitizes(t *testing.T) {
	out, err := NewRenderer().Render(sampleFrame())
	require.NoError(t, err)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "alert(1)")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "link")
}

func TestRenderStyles(t *testing.T) {
	tests := []struct {
		name  string
		style map[string]any
		want  string
	}{
		{"kept", map[string]any{"transform": "scale(1.5)", "backgroundColor": "white"}, `style="background-color: white; transform: scale(1.5)"`},
		{"gradient", map[string]any{"backgroundImage": "linear-gradient(red, blue)"}, `style="background-image: linear-gradient(red, blue)"`},
		{"url dropped", map[string]any{"backgroundImage": "url(https://evil.example/x.png)", "opacity": 1.0}, `style="opacity: 1"`},
		{"url in shorthand", map[string]any{"background": "URL(//evil.example/x.png)", "color": "red"}, `style="color: red"`},
		{"unknown property", map[string]any{"behavior": "x.htc", "top": int64(4)}, `style="top: 4px"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewRenderer().Render([]*sandbox.Node{{Type: "div", Props: map[string]any{"style": tt.style}}})
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "evil.example")
		})
	}
}

func TestRenderShape(t *testing.T) {
	out, err := NewRenderer().Render(sampleFrame())
	require.NoError(t, err)

	svgs, err := Select(out, `svg[data-component="Circle"]`)
	require.NoError(t, err)
	require.Len(t, svgs, 1)
	assert.Contains(t, svgs[0].HTML, `width="20"`)
	assert.Contains(t, svgs[0].HTML, `height="20"`)

	paths, err := XPath(out, "//svg/path")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0].HTML, `d="M 0 0 Z"`)
}

func TestRenderEmpty(t *testing.T) {
	out, err := NewRenderer().Render(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCSS(t *testing.T) {
	tests := []struct {
		name  string
		style map[string]any
		want  string
	}{
		{"empty", map[string]any{}, ""},
		{
			"units",
			map[string]any{"opacity": 0.5, "fontSize": int64(24), "marginTop": int64(0), "zIndex": int64(3)},
			"font-size: 24px; margin-top: 0; opacity: 0.5; z-index: 3;",
		},
		{
			"strings",
			map[string]any{"backgroundColor": "red", "transform": "scale(2)", "color": nil},
			"background-color: red; transform: scale(2);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CSS(tt.style))
		})
	}
}

func TestSelect(t *testing.T) {
	fragment := `<div id="root"><span class="n">1</span><span class="n">2</span></div>`

	tests := []struct {
		selector string
		texts    []string
	}{
		{"#root", []string{"12"}},
		{"span.n", []string{"1", "2"}},
		{".missing", nil},
		{"[[[", nil},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			matches, err := Select(fragment, tt.selector)
			require.NoError(t, err)
			var texts []string
			for _, m := range matches {
				texts = append(texts, m.Text)
			}
			assert.Equal(t, tt.texts, texts)
		})
	}
}

func TestXPath(t *testing.T) {
	fragment := `<div id="root"><span class="n">1</span><span class="n">2</span></div>`

	matches, err := XPath(fragment, `//span[@class="n"][2]`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, `<span class="n">2</span>`, matches[0].HTML)

	_, err = XPath(fragment, "//span[")
	assert.ErrorContains(t, err, "invalid xpath")
}
