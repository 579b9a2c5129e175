// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package intake implements C7: it transforms raw parsed nodes into the
// shape the scheduler core expects (background/assignment wrapping,
// top-level Semi flattening) before handing each one to the graph.
package intake

import "github.com/matt-FFFFFF/parashell/internal/cmdtree"

// Builtins are the command names IsBuiltin recognises. Kept as a set rather
// than a hardcoded pair so an embedding CLI can extend it. Nothing in this
// repository runs them off the graph: Flatten returns a builtin Simple as an
// ordinary Item.Node (without the Background wrapper), and it is scheduled
// like any other command.
var Builtins = map[string]bool{
	"cd":   true,
	"exit": true,
}

// Item is one unit intake hands to the graph: either a CommandTree destined
// for the scheduler, or a synchronous builtin invocation for the caller to
// run off-graph immediately.
type Item struct {
	Node    cmdtree.Node // nil if Builtin is set
	Builtin *cmdtree.Simple
	EOF     bool
}

// Flatten implements intake(raw): Semi(a,b) recurses into a then b;
// everything else becomes a single, possibly-reshaped Item. It returns
// items in source order, which the scheduler preserves into graph-add
// order.
func Flatten(raw cmdtree.Node) []Item {
	switch v := raw.(type) {
	case *cmdtree.EOF:
		return []Item{{EOF: true}}

	case *cmdtree.Semi:
		return append(Flatten(v.A), Flatten(v.B)...)

	case *cmdtree.Not:
		inner := classify(v.Inner)
		return []Item{{Node: &cmdtree.Not{Inner: inner}}}

	default:
		return []Item{{Node: classify(raw)}}
	}
}

// classify applies the Simple reshaping rules: a builtin-free Simple
// becomes Background(Simple); an assignment-only Simple becomes
// VarAssign(Simple); everything else passes through.
func classify(n cmdtree.Node) cmdtree.Node {
	s, ok := n.(*cmdtree.Simple)
	if !ok {
		return n
	}

	if len(s.Args) == 0 && len(s.Assigns) > 0 {
		return &cmdtree.VarAssign{Simple: s}
	}

	if len(s.Args) > 0 && Builtins[s.Args[0]] {
		return s // a builtin is returned unwrapped, still as a graph item
	}

	return &cmdtree.Background{Inner: s}
}

// IsBuiltin reports whether a raw Simple invokes a builtin, a name listed in
// Builtins.
func IsBuiltin(n cmdtree.Node) (*cmdtree.Simple, bool) {
	s, ok := n.(*cmdtree.Simple)
	if !ok || len(s.Args) == 0 {
		return nil, false
	}

	if Builtins[s.Args[0]] {
		return s, true
	}

	return nil, false
}
