package compiler

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Dialect is a surface syntax the transformer must accept.
type Dialect string

const (
	DialectTypeScript Dialect = "typescript"
	DialectReact      Dialect = "react"
)

// DefaultDialects are the dialects generated components are written in.
var DefaultDialects = []Dialect{DialectReact, DialectTypeScript}

// Transformer converts scaffolded source into code goja can run.
type Transformer interface {
	Transform(source string, dialects ...Dialect) (string, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(source string, dialects ...Dialect) (string, error)

// Transform implements Transformer.
func (f TransformerFunc) Transform(source string, dialects ...Dialect) (string, error) {
	return f(source, dialects...)
}

// ESBuild transforms TypeScript and JSX with esbuild's transform API.
type ESBuild struct {
	Filename    string
	Target      api.Target
	JSXFactory  string
	JSXFragment string
}

// NewESBuild returns a transformer emitting ES2015 with classic
// React.createElement JSX.
func NewESBuild() *ESBuild {
	return &ESBuild{
		Filename:    "dynamic-animation.tsx",
		Target:      api.ES2015,
		JSXFactory:  "React.createElement",
		JSXFragment: "React.Fragment",
	}
}

// Transform implements Transformer.
func (e *ESBuild) Transform(source string, dialects ...Dialect) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:      loaderFor(dialects),
		Sourcefile:  e.Filename,
		Target:      e.Target,
		JSX:         api.JSXTransform,
		JSXFactory:  e.JSXFactory,
		JSXFragment: e.JSXFragment,
		LogLevel:    api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", errors.New(formatMessages(result.Errors))
	}
	return string(result.Code), nil
}

func loaderFor(dialects []Dialect) api.Loader {
	ts := slices.Contains(dialects, DialectTypeScript)
	jsx := slices.Contains(dialects, DialectReact)
	switch {
	case ts && jsx:
		return api.LoaderTSX
	case ts:
		return api.LoaderTS
	case jsx:
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}

// formatMessages renders esbuild errors as "file:line:col: text", one per line.
func formatMessages(msgs []api.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Text == "" {
			continue
		}
		if m.Location == nil {
			lines = append(lines, m.Text)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
	}
	return strings.Join(lines, "\n")
}
