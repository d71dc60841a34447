// Package compiler turns generated animation source into a sandboxed,
// invocable component.
//
// A compilation is a single pass through
//
//	idle → normalizing → scaffolding → transforming → constructing → invoking → succeeded | failed
//
// Normalize strips import declarations and unwraps an exported arrow
// component. Scaffold binds the body to DynamicAnimation. A Transformer
// (esbuild by default) removes TypeScript and JSX syntax. The sandbox then
// constructs a function over the capability table's names, invokes it with
// the bound values and probes the resulting component once at frame 0.
//
// Compile never panics and never returns a Go error: every failure is an
// *Error inside the Result, tagged with its Kind and the Stage that failed.
package compiler
