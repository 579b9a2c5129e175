// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package expander implements the compound-node expander (C4): a per-type
// expansion table for And/Or/If/While/Until/For, plus the flattening helper
// that turns a compound's test/then/else/body subtree into a linear list of
// commands.
//
// Unlike the other scheduler components, expander holds no graph/frontier
// state of its own — internal/scheduler owns the Sentinel bookkeeping
// (which segment is pending, the remaining For argument list, ...) and
// calls into these pure helpers to decide what to do next. That keeps the
// per-node recursive flattening and the And/Or/If/While/Until/For decision
// table in one place, independent of the locking and graph-mutation
// concerns scheduler owns.
package expander

import "github.com/matt-FFFFFF/parashell/internal/cmdtree"

// Type identifies which compound shape a sentinel expands, mirroring
// internal/frontier.Type (kept separate so expander doesn't import
// frontier, avoiding a cycle with scheduler wiring both together).
type Type int

const (
	TypeAnd Type = iota
	TypeOr
	TypeIf
	TypeWhile
	TypeUntil
	TypeFor
)

// FlattenSemi splits a CommandTree on top-level Semi nodes only, returning
// the linear list of commands a segment expands into. Other node shapes
// (including nested compounds) are each a single list member; a nested
// compound becomes its own sentinel when submitted, exactly as it would at
// top-level intake.
func FlattenSemi(n cmdtree.Node) []cmdtree.Node {
	if n == nil {
		return nil
	}

	if s, ok := n.(*cmdtree.Semi); ok {
		return append(FlattenSemi(s.A), FlattenSemi(s.B)...)
	}

	return []cmdtree.Node{n}
}

// TestSegment returns the CommandTree to expand first for a compound's test
// phase. For has no test segment (ok=false); the caller drives iteration
// directly from the argument list instead.
func TestSegment(t Type, n cmdtree.Node) (seg cmdtree.Node, ok bool) {
	switch t {
	case TypeAnd:
		return n.(*cmdtree.And).A, true
	case TypeOr:
		return n.(*cmdtree.Or).A, true
	case TypeIf:
		return n.(*cmdtree.If).Test, true
	case TypeWhile:
		return n.(*cmdtree.While).Test, true
	case TypeUntil:
		return n.(*cmdtree.Until).Test, true
	case TypeFor:
		return nil, false
	}

	return nil, false
}

// FiresBody reports whether a TestTail's exit status means the body should
// expand.
func FiresBody(t Type, status int) bool {
	switch t {
	case TypeAnd:
		return status == 0
	case TypeOr:
		return status != 0
	case TypeIf:
		return true // If always has a body path; which branch is chosen by BodySegment
	case TypeWhile:
		return status == 0
	case TypeUntil:
		return status != 0
	case TypeFor:
		return true
	}

	return false
}

// BodySegment returns the CommandTree to expand for the body/then/else
// phase once FiresBody (or, for If, always) has selected a branch.
func BodySegment(t Type, n cmdtree.Node, status int) (seg cmdtree.Node, ok bool) {
	switch t {
	case TypeAnd:
		return n.(*cmdtree.And).B, true
	case TypeOr:
		return n.(*cmdtree.Or).B, true
	case TypeIf:
		ifNode := n.(*cmdtree.If)
		if status == 0 {
			return ifNode.Then, true
		}

		if ifNode.Else == nil {
			return nil, false
		}

		return ifNode.Else, true
	case TypeWhile:
		return n.(*cmdtree.While).Body, true
	case TypeUntil:
		return n.(*cmdtree.Until).Body, true
	case TypeFor:
		return n.(*cmdtree.For).Body, true
	}

	return nil, false
}

// IsLoop reports whether t repeats its test/body cycle.
func (t Type) IsLoop() bool {
	return t == TypeWhile || t == TypeUntil || t == TypeFor
}
