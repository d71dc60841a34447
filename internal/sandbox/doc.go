/*
Package sandbox executes transpiled animation components inside a goja
JavaScript runtime whose only visible bindings are an explicit, ordered
capability table.

# Overview

Generated code never sees the host environment. Each compilation gets a fresh
Scope (one goja runtime) and the capabilities it may use are passed to a
constructed function as positional parameters:

	(function(React, Remotion, ..., clockWipe) {
		<transpiled code>
		return DynamicAnimation;
	})

Invoking that function yields the component. The capability values are never
installed on the global object.

# Capabilities

A Table is an ordered list of (name, value) pairs fixed at startup. Plain Go
values are converted with goja's reflection rules. Values implementing Binder
are bound per scope, which is how runtime-dependent primitives (hooks that read
the current frame, host components, element construction) get access to the
scope they run in.

# Security Model

This is a capability boundary, not an isolation boundary against a malicious
author:
  - require, process, module and exports are undefined
  - timers are inert
  - names that are neither parameters nor locals resolve against the runtime's
    global object (ECMAScript built-ins and console)
  - there is no memory limit; CPU time is bounded only when a Timeout or a
    cancellable context is supplied

# Rendering

Component.Render resolves the element tree produced by a component at a given
frame into plain Nodes. Host components registered by capabilities can shift
the frame for their subtree (sequences), arrange children on a timeline
(transition series) or decorate their props (shapes).

# Usage Example

	table, _ := sandbox.NewTable("1", sandbox.Capability{Name: "double", Value: func(n int) int { return n * 2 }})
	scope := sandbox.NewScope(sandbox.DefaultConfig())
	args, err := scope.Bind(table)
	fn, err := scope.Construct(table, code, "DynamicAnimation")
	component, err := scope.Instantiate(ctx, fn, args)
	nodes, err := component.Render(ctx, 0)
*/
package sandbox
