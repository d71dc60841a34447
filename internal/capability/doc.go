// Package capability defines the default capability table generated
// animation components are compiled against: a React-compatible element
// factory and hooks, Remotion timing primitives, shape components, transition
// series and a small THREE namespace.
//
// All values are bound per compilation scope. Hooks follow preview
// semantics, so a component is a pure function of the current frame.
package capability
