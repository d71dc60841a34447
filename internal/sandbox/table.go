package sandbox

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dop251/goja"
)

var (
	ErrInvalidName         = errors.New("capability name is not a valid identifier")
	ErrDuplicateCapability = errors.New("duplicate capability")
	ErrUnknownCapability   = errors.New("unknown capability")
	ErrBindingCycle        = errors.New("capability binding cycle")
)

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "let": true, "static": true, "await": true,
	"arguments": true, "eval": true,
}

// Capability is one named value made visible to sandboxed code.
type Capability struct {
	Name  string
	Value any
}

// Binder is implemented by capability values that must be created inside the
// runtime they are used in.
type Binder interface {
	Bind(s *Scope) (goja.Value, error)
}

// BindFunc adapts a function to Binder.
type BindFunc func(s *Scope) (goja.Value, error)

// Bind implements Binder.
func (f BindFunc) Bind(s *Scope) (goja.Value, error) { return f(s) }

// Table is an ordered, immutable capability whitelist. Order matters: it is
// the parameter order of every constructed component function.
type Table struct {
	version string
	entries []Capability
	index   map[string]int
}

// NewTable validates and freezes caps.
func NewTable(version string, caps ...Capability) (*Table, error) {
	t := &Table{
		version: version,
		entries: make([]Capability, 0, len(caps)),
		index:   make(map[string]int, len(caps)),
	}
	for _, c := range caps {
		if !identPattern.MatchString(c.Name) || reservedWords[c.Name] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, c.Name)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCapability, c.Name)
		}
		if _, isValue := c.Value.(goja.Value); isValue {
			return nil, fmt.Errorf("capability %s: goja values belong to a single runtime, use a Binder", c.Name)
		}
		t.index[c.Name] = len(t.entries)
		t.entries = append(t.entries, c)
	}
	return t, nil
}

// MustTable is NewTable that panics on error, for static tables.
func MustTable(version string, caps ...Capability) *Table {
	t, err := NewTable(version, caps...)
	if err != nil {
		panic(err)
	}
	return t
}

// Version identifies the capability surface.
func (t *Table) Version() string { return t.version }

// Len returns the number of capabilities.
func (t *Table) Len() int { return len(t.entries) }

// Names returns capability names in binding order.
func (t *Table) Names() []string {
	names := make([]string, len(t.entries))
	for i, c := range t.entries {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the value registered under name.
func (t *Table) Lookup(name string) (any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.entries[i].Value, true
}
